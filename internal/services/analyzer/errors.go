package analyzer

import (
	"errors"
	"net/http"
)

// FetchError means the image could not be retrieved from its URL.
type FetchError struct{ Err error }

func (e *FetchError) Error() string { return e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError means the bytes were retrieved but are not a usable image.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// DetectionError means the detector itself failed.
type DetectionError struct{ Err error }

func (e *DetectionError) Error() string { return e.Err.Error() }
func (e *DetectionError) Unwrap() error { return e.Err }

// StatusFor maps a pipeline error to the HTTP status and detail message returned to callers.
func StatusFor(err error) (int, string) {
	var fetchErr *FetchError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadRequest, "Failed to fetch image: " + fetchErr.Error()
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, "Failed to decode image: " + decodeErr.Error()
	default:
		return http.StatusInternalServerError, "Failed to process image: " + err.Error()
	}
}
