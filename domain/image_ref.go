package domain

import (
	"strings"

	"thumbs/utils/errors"
)

// OriginImageRef is an opaque filename token identifying an image at the origin.
// A valid ref never contains path separators or parent-directory components.
type OriginImageRef string

// String implements fmt.Stringer.
func (r OriginImageRef) String() string {
	return string(r)
}

// SanitizeImageRef keeps only the final path segment of an untrusted identifier.
// Both '/' and '\' count as separators. No existence check is made here.
func SanitizeImageRef(raw string) (OriginImageRef, error) {
	if strings.ContainsRune(raw, 0) {
		return "", newInvalidRequest("image identifier contains NUL byte", nil)
	}

	trimmed := strings.TrimRight(raw, `/\`)
	if idx := strings.LastIndexAny(trimmed, `/\`); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSpace(trimmed)

	switch trimmed {
	case "", ".", "..":
		return "", newInvalidRequest("image not specified", map[string]interface{}{
			"raw": raw,
		})
	}

	return OriginImageRef(trimmed), nil
}

func newInvalidRequest(message string, context map[string]interface{}) error {
	return errors.NewInvalidRequestError(message, "domain", "ThumbnailRequest", "sanitize", context)
}
