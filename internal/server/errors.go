package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrBadRequest indicates a request body that could not be decoded
type ErrBadRequest struct {
	Messages []string
}

func (e *ErrBadRequest) Error() string {
	return "bad request: " + strings.Join(e.Messages, "; ")
}

// ErrUnsupportedMediaType indicates a non-JSON request body
type ErrUnsupportedMediaType struct {
	ContentType string
}

func (e *ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("unsupported content type: %s", e.ContentType)
}

// ErrRequestTooLarge indicates a request body over the size limit
type ErrRequestTooLarge struct {
	Limit int64
}

func (e *ErrRequestTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		badRequest  *ErrBadRequest
		unsupported *ErrUnsupportedMediaType
		tooLarge    *ErrRequestTooLarge
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// errorMessages returns the lines reported in an OperationResult for err.
func errorMessages(err error) []string {
	var badRequest *ErrBadRequest
	if errors.As(err, &badRequest) && len(badRequest.Messages) > 0 {
		return badRequest.Messages
	}
	return []string{err.Error()}
}
