// Package conditional implements ETag derivation and If-None-Match evaluation.
package conditional

import (
	_ "crypto/sha256"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

const etagHexLen = 32

// ComputeETag derives a strong validator from the origin URL and target size. It does not
// depend on the artifact bytes, so it can be evaluated before any cache or origin work.
func ComputeETag(originURL string, size int) string {
	d := digest.FromString(fmt.Sprintf("%s_%d", originURL, size))
	return `"` + d.Encoded()[:etagHexLen] + `"`
}

// Matches reports whether the If-None-Match header value selects etag. It accepts comma
// separated lists, weak validators and unquoted tags. "*" never matches: it is evaluated before
// the origin is consulted, when no current representation is known to exist.
func Matches(ifNoneMatch, etag string) bool {
	header := strings.TrimSpace(ifNoneMatch)
	if header == "" || etag == "" {
		return false
	}
	want := opaqueTag(etag)
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

// opaqueTag strips the weak prefix and surrounding quotes.
func opaqueTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	tag = strings.TrimPrefix(tag, "w/")
	return strings.Trim(tag, `"`)
}

// ApplyHeaders sets the validator and caching headers sent with every 200 and 304.
func ApplyHeaders(h http.Header, etag string, maxAge time.Duration) {
	h.Set("ETag", etag)
	h.Set("Cache-Control", "public, max-age="+strconv.FormatInt(int64(maxAge/time.Second), 10))
}
