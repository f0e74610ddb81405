package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/models"
)

type SessionReaderMock struct {
	mock.Mock
}

func (m *SessionReaderMock) Get(ctx context.Context, sessionID string) (*models.Principal, error) {
	args := m.Called(ctx, sessionID)
	p, _ := args.Get(0).(*models.Principal)
	return p, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// capture records the principal seen by the wrapped handler.
func capture(seen **models.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = auth.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadPrincipal(t *testing.T) {
	student := &models.Principal{ID: 3, Role: models.RoleStudent}

	tests := []struct {
		name   string
		cookie string
		setup  func(*SessionReaderMock)
		want   *models.Principal
	}{
		{
			name:   "valid session",
			cookie: "sid-1",
			setup: func(m *SessionReaderMock) {
				m.On("Get", mock.Anything, "sid-1").Return(student, nil)
			},
			want: student,
		},
		{
			name: "no cookie",
		},
		{
			name:   "expired session",
			cookie: "sid-2",
			setup: func(m *SessionReaderMock) {
				m.On("Get", mock.Anything, "sid-2").Return(nil, nil)
			},
		},
		{
			name:   "session backend down",
			cookie: "sid-3",
			setup: func(m *SessionReaderMock) {
				m.On("Get", mock.Anything, "sid-3").Return(nil, errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(SessionReaderMock)
			if tt.setup != nil {
				tt.setup(sessions)
			}

			var seen *models.Principal
			h := LoadPrincipal(sessions, newNoopLogger())(capture(&seen))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, seen)
			sessions.AssertExpectations(t)
		})
	}
}

func withPrincipal(p *models.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	var seen *models.Principal
	h := RequireAuth("/auth/login")(capture(&seen))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withPrincipal(nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))
	assert.Nil(t, seen)

	p := &models.Principal{ID: 1, Role: models.RoleStudent}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withPrincipal(p))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, p, seen)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		p        *models.Principal
		wantCode int
	}{
		{"anonymous", nil, http.StatusForbidden},
		{"student", &models.Principal{ID: 1, Role: models.RoleStudent}, http.StatusForbidden},
		{"admin", &models.Principal{ID: 2, Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *models.Principal
			rr := httptest.NewRecorder()
			RequireAdmin(capture(&seen)).ServeHTTP(rr, withPrincipal(tt.p))

			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.JSONEq(t, `{"status":"Error","error":"access denied"}`, rr.Body.String())
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := rate.NewLimiter(1, 1)
	h := RateLimit(limiter, newNoopLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"too many requests"}`, rr.Body.String())
}
