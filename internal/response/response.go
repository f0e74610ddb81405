// Package response builds the JSON envelopes returned by the HTTP handlers and
// maps domain errors onto status codes.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/models"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

func Error(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// ValidationError turns validator errors into one human-readable message.
func ValidationError(errs validator.ValidationErrors) Response {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "phone":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid phone number", err.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(msgs, ", "))
}

// WriteValidation answers 400 for an error returned by validator.Struct.
func WriteValidation(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		JSON(w, r, http.StatusBadRequest, ValidationError(verrs))
		return
	}
	JSON(w, r, http.StatusBadRequest, Error("invalid request body"))
}

var validationErrors = []error{
	models.ErrInvalidInput,
	models.ErrPasswordMismatch,
	models.ErrPasswordTooShort,
	models.ErrPasswordTooLong,
	models.ErrInvalidAmount,
	models.ErrMissingField,
}

// WriteError maps err onto a status code and a message that is safe to show.
// Unclassified errors are logged and reported as a generic server error.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			JSON(w, r, http.StatusBadRequest, Error(target.Error()))
			return
		}
	}

	switch {
	case errors.Is(err, models.ErrEmailTaken):
		JSON(w, r, http.StatusConflict, Error(models.ErrEmailTaken.Error()))
	case errors.Is(err, models.ErrInvalidCredentials):
		JSON(w, r, http.StatusUnauthorized, Error(models.ErrInvalidCredentials.Error()))
	case errors.Is(err, models.ErrAccountDisabled):
		JSON(w, r, http.StatusForbidden, Error(models.ErrAccountDisabled.Error()))
	case errors.Is(err, models.ErrForbidden):
		JSON(w, r, http.StatusForbidden, Error(models.ErrForbidden.Error()))
	case errors.Is(err, models.ErrNotFound):
		JSON(w, r, http.StatusNotFound, Error("not found"))
	case errors.Is(err, models.ErrNotAStudent):
		JSON(w, r, http.StatusConflict, Error(models.ErrNotAStudent.Error()))
	case errors.Is(err, models.ErrRoleViolation):
		JSON(w, r, http.StatusConflict, Error(models.ErrRoleViolation.Error()))
	default:
		log.Error("request failed", sl.Err(err))
		JSON(w, r, http.StatusInternalServerError, Error("internal error"))
	}
}

var clientErrors = []error{
	models.ErrEmailTaken,
	models.ErrInvalidCredentials,
	models.ErrAccountDisabled,
	models.ErrForbidden,
	models.ErrNotFound,
	models.ErrNotAStudent,
	models.ErrRoleViolation,
}

// IsClientError reports whether err is caused by the request rather than the server.
func IsClientError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
