package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/founder-match/internal/recommend"
)

// ErrUnauthorized indicates the request carries no authenticated member
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "Unauthorized"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var unauthorized *ErrUnauthorized
	var validation *ErrValidation
	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, recommend.ErrSubjectNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the message shown to the caller for err.
func ErrorMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "Failed to generate recommendations"
	case http.StatusNotFound:
		return "Profile not found"
	default:
		return err.Error()
	}
}
