package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayush/student-rating/internal/lib/validate"
	"github.com/ayush/student-rating/internal/models"
	"github.com/ayush/student-rating/internal/response"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Register(ctx context.Context, req models.RegisterRequest) (*models.Principal, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*models.Principal)
	return p, args.Error(1)
}

func (m *AuthenticatorMock) Login(ctx context.Context, email, password string) (*models.Principal, error) {
	args := m.Called(ctx, email, password)
	p, _ := args.Get(0).(*models.Principal)
	return p, args.Error(1)
}

type SessionsMock struct {
	mock.Mock
}

func (m *SessionsMock) Create(ctx context.Context, p *models.Principal) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *SessionsMock) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *SessionsMock) TTL() time.Duration { return time.Hour }

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "test-req-id")
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func registerBody() map[string]string {
	return map[string]string{
		"fullName":        "Ann Lee",
		"phone":           "+15550001",
		"group":           "CS-21",
		"email":           "ann@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
}

func newTestHandler() (*Handler, *AuthenticatorMock, *SessionsMock) {
	authMock := new(AuthenticatorMock)
	sessions := new(SessionsMock)
	return NewHandler(authMock, sessions, newNoopLogger(), nil, validate.New(), false), authMock, sessions
}

func TestHandler_Register(t *testing.T) {
	principal := &models.Principal{ID: 1, Email: "ann@example.com", Role: models.RoleStudent}

	t.Run("success starts a session and redirects to the profile", func(t *testing.T) {
		h, authMock, sessions := newTestHandler()
		authMock.On("Register", mock.Anything, mock.MatchedBy(func(r models.RegisterRequest) bool {
			return r.Email == "ann@example.com" && r.ConfirmPassword == "secret1"
		})).Return(principal, nil).Once()
		sessions.On("Create", mock.Anything, principal).Return("sid-1", nil).Once()

		rr := httptest.NewRecorder()
		h.Register(rr, newJSONRequest(t, http.MethodPost, "/auth/register", registerBody()))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, ProfilePath, rr.Header().Get("Location"))
		c := sessionCookie(rr)
		require.NotNil(t, c)
		assert.Equal(t, "sid-1", c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 3600, c.MaxAge)
		authMock.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("form encoded body", func(t *testing.T) {
		h, authMock, sessions := newTestHandler()
		authMock.On("Register", mock.Anything, mock.Anything).Return(principal, nil).Once()
		sessions.On("Create", mock.Anything, principal).Return("sid-2", nil).Once()

		form := url.Values{}
		for k, v := range registerBody() {
			form.Set(k, v)
		}
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rr := httptest.NewRecorder()
		h.Register(rr, req)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
	})

	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantCode   int
		wantError  string
	}{
		{
			name:      "invalid json",
			body:      "{not json",
			wantCode:  http.StatusBadRequest,
			wantError: "invalid request body",
		},
		{
			name: "invalid email",
			body: func() map[string]string {
				b := registerBody()
				b["email"] = "not-an-email"
				return b
			}(),
			wantCode:  http.StatusBadRequest,
			wantError: "field email must be a valid email",
		},
		{
			name:       "passwords differ",
			body:       registerBody(),
			serviceErr: models.ErrPasswordMismatch,
			wantCode:   http.StatusBadRequest,
			wantError:  models.ErrPasswordMismatch.Error(),
		},
		{
			name:       "email taken",
			body:       registerBody(),
			serviceErr: models.ErrEmailTaken,
			wantCode:   http.StatusConflict,
			wantError:  models.ErrEmailTaken.Error(),
		},
		{
			name:       "storage failure",
			body:       registerBody(),
			serviceErr: errors.New("db down"),
			wantCode:   http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, authMock, sessions := newTestHandler()
			if tt.serviceErr != nil {
				authMock.On("Register", mock.Anything, mock.Anything).Return(nil, tt.serviceErr).Once()
			}

			rr := httptest.NewRecorder()
			h.Register(rr, newJSONRequest(t, http.MethodPost, "/auth/register", tt.body))

			assert.Equal(t, tt.wantCode, rr.Code)
			resp := decodeResponse(t, rr)
			assert.Equal(t, response.StatusError, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, sessionCookie(rr))
			sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			if tt.serviceErr == nil {
				authMock.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	principal := &models.Principal{ID: 2, Email: "bo@example.com", Role: models.RoleAdmin}
	body := map[string]string{"email": "bo@example.com", "password": "secret1"}

	t.Run("success", func(t *testing.T) {
		h, authMock, sessions := newTestHandler()
		authMock.On("Login", mock.Anything, "bo@example.com", "secret1").Return(principal, nil).Once()
		sessions.On("Create", mock.Anything, principal).Return("sid-3", nil).Once()

		rr := httptest.NewRecorder()
		h.Login(rr, newJSONRequest(t, http.MethodPost, "/auth/login", body))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, ProfilePath, rr.Header().Get("Location"))
		require.NotNil(t, sessionCookie(rr))
	})

	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
	}{
		{"bad credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"disabled account", models.ErrAccountDisabled, http.StatusForbidden, models.ErrAccountDisabled.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, authMock, _ := newTestHandler()
			authMock.On("Login", mock.Anything, "bo@example.com", "secret1").Return(nil, tt.err).Once()

			rr := httptest.NewRecorder()
			h.Login(rr, newJSONRequest(t, http.MethodPost, "/auth/login", body))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantError, decodeResponse(t, rr).Error)
			assert.Nil(t, sessionCookie(rr))
		})
	}

	t.Run("missing password", func(t *testing.T) {
		h, authMock, _ := newTestHandler()
		rr := httptest.NewRecorder()
		h.Login(rr, newJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{"email": "bo@example.com"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "field password is a required field", decodeResponse(t, rr).Error)
		authMock.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session backend failure", func(t *testing.T) {
		h, authMock, sessions := newTestHandler()
		authMock.On("Login", mock.Anything, "bo@example.com", "secret1").Return(principal, nil).Once()
		sessions.On("Create", mock.Anything, principal).Return("", errors.New("redis down")).Once()

		rr := httptest.NewRecorder()
		h.Login(rr, newJSONRequest(t, http.MethodPost, "/auth/login", body))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Nil(t, sessionCookie(rr))
	})
}

func TestHandler_Logout(t *testing.T) {
	h, _, sessions := newTestHandler()
	sessions.On("Delete", mock.Anything, "sid-9").Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-9"})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, HomePath, rr.Header().Get("Location"))
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	sessions.AssertExpectations(t)

	t.Run("without a cookie", func(t *testing.T) {
		h, _, sessions := newTestHandler()
		rr := httptest.NewRecorder()
		h.Logout(rr, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestHandler_Me(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	p := &models.Principal{ID: 4, FullName: "Ann", Role: models.RoleStudent}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(WithPrincipal(req.Context(), p))
	rr = httptest.NewRecorder()
	h.Me(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, response.StatusOK, resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), data["id"])
	assert.Equal(t, "student", data["role"])
}

func TestHandler_EntryPages(t *testing.T) {
	h, _, _ := newTestHandler()
	signedIn := &models.Principal{ID: 4, Role: models.RoleStudent}

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		target     string
		wantAction string
	}{
		{"login", h.LoginPage, LoginPath, LoginPath},
		{"register", h.RegisterPage, RegisterPath, RegisterPath},
	}
	for _, tt := range tests {
		t.Run(tt.name+" anonymous", func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			resp := decodeResponse(t, rr)
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantAction, data["action"])
			assert.Equal(t, http.MethodPost, data["method"])
		})

		t.Run(tt.name+" signed in", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req = req.WithContext(WithPrincipal(req.Context(), signedIn))
			rr := httptest.NewRecorder()
			tt.handler(rr, req)

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, ProfilePath, rr.Header().Get("Location"))
		})
	}
}
