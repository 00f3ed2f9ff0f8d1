package errors

import (
	"errors"
	"net/http"
)

// Sentinel errors for the thumbnail pipeline. Use errors.Is to test for them.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrOriginUnavailable = errors.New("origin unavailable")
	ErrDecodeFailure     = errors.New("decode failure")
	ErrPersistFailure    = errors.New("persist failure")
	ErrUnservable        = errors.New("content cannot be served")
	ErrCircuitOpen       = errors.New("circuit breaker is open")
)

// IsInvalidRequest checks if an error represents an empty or unsanitizable identifier
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsOriginUnavailable checks if an error represents any kind of origin fetch failure
func IsOriginUnavailable(err error) bool {
	return errors.Is(err, ErrOriginUnavailable)
}

// IsDecodeFailure checks if an error represents undecodable image bytes
func IsDecodeFailure(err error) bool {
	return errors.Is(err, ErrDecodeFailure)
}

// IsPersistFailure checks if an error represents a cache store write failure
func IsPersistFailure(err error) bool {
	return errors.Is(err, ErrPersistFailure)
}

// IsUnservable checks if an error means nothing at all can be served
func IsUnservable(err error) bool {
	return errors.Is(err, ErrUnservable)
}

// HTTPStatus returns the status code a client should see for err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *AppContextError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatusCode()
	}
	if IsInvalidRequest(err) || IsOriginUnavailable(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// IsCircuitOpen checks if an error was returned by an open circuit breaker
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
