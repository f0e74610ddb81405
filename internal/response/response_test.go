package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/student-rating/internal/lib/validate"
	"github.com/ayush/student-rating/internal/models"
)

func TestWriteError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{models.ErrPasswordMismatch, http.StatusBadRequest, models.ErrPasswordMismatch.Error()},
		{fmt.Errorf("rating.AwardPoints: %w", models.ErrInvalidAmount), http.StatusBadRequest, models.ErrInvalidAmount.Error()},
		{models.ErrEmailTaken, http.StatusConflict, models.ErrEmailTaken.Error()},
		{models.ErrInvalidCredentials, http.StatusUnauthorized, models.ErrInvalidCredentials.Error()},
		{models.ErrAccountDisabled, http.StatusForbidden, models.ErrAccountDisabled.Error()},
		{models.ErrForbidden, http.StatusForbidden, models.ErrForbidden.Error()},
		{fmt.Errorf("store.GetNews: %w", models.ErrNotFound), http.StatusNotFound, "not found"},
		{models.ErrNotAStudent, http.StatusConflict, models.ErrNotAStudent.Error()},
		{models.ErrRoleViolation, http.StatusConflict, models.ErrRoleViolation.Error()},
		{errors.New("connection refused to 10.0.0.5"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), log, tt.err)
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"status":"Error","error":%q}`, tt.wantMsg), rr.Body.String())
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("wrapped: %w", models.ErrPasswordTooShort)))
	assert.True(t, IsClientError(models.ErrNotFound))
	assert.False(t, IsClientError(errors.New("db down")))
	assert.False(t, IsClientError(nil))
}

func TestWriteValidation(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
		Phone string `json:"phone" validate:"required,phone"`
	}

	rr := httptest.NewRecorder()
	WriteValidation(rr, httptest.NewRequest(http.MethodPost, "/", nil), validate.New().Struct(req{Email: "nope", Phone: "abc"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t,
		`{"status":"Error","error":"field email must be a valid email, field phone must be a valid phone number"}`,
		rr.Body.String())

	rr = httptest.NewRecorder()
	WriteValidation(rr, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("boom"))
	assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, rr.Body.String())
}

func TestOK(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, OK(map[string]int{"id": 7}))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"id":7}}`, rr.Body.String())
}
