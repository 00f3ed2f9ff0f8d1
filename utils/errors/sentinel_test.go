package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelHelpers(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		status int
	}{
		{
			name:   "invalid request",
			err:    NewInvalidRequestError("image not specified", "domain", "ThumbnailRequest", "sanitize", nil),
			check:  IsInvalidRequest,
			status: http.StatusNotFound,
		},
		{
			name:   "origin unavailable keeps cause",
			err:    NewOriginUnavailableError("fetch failed", "gateway", "OriginFetchGateway", "fetch", cause, nil),
			check:  IsOriginUnavailable,
			status: http.StatusNotFound,
		},
		{
			name:   "decode failure",
			err:    NewDecodeFailureError("decode failed", "gateway", "TranscodeGateway", "decode", cause, nil),
			check:  IsDecodeFailure,
			status: http.StatusInternalServerError,
		},
		{
			name:   "persist failure",
			err:    NewPersistFailureError("write failed", "driver", "DiskStore", "store", cause, nil),
			check:  IsPersistFailure,
			status: http.StatusInternalServerError,
		},
		{
			name:   "unservable",
			err:    NewUnservableError("nothing to serve", "usecase", "ThumbnailUsecase", "build", nil, nil),
			check:  IsUnservable,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))

			wrapped := fmt.Errorf("usecase: %w", tt.err)
			assert.True(t, tt.check(wrapped), "sentinel must survive further wrapping")
			assert.Equal(t, tt.status, HTTPStatus(wrapped))
		})
	}
}

func TestOriginUnavailableError_UnwrapsCause(t *testing.T) {
	cause := errors.New("status code: 503")
	err := NewOriginUnavailableError("fetch failed", "gateway", "OriginFetchGateway", "fetch", cause, map[string]interface{}{"url": "https://origin/a.jpg"})

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrOriginUnavailable)
	assert.Contains(t, err.Error(), "[gateway:OriginFetchGateway:fetch]")
	assert.Equal(t, "https://origin/a.jpg", err.Context["url"])
}

func TestHTTPStatus_PlainErrors(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("x: %w", ErrOriginUnavailable)))
}
