package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/metrics"
	"github.com/ayush/student-rating/internal/models"
	"github.com/ayush/student-rating/internal/response"
)

const (
	ProfilePath  = "/profile"
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	HomePath     = "/"
)

// Authenticator verifies and creates accounts.
type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Principal, error)
	Login(ctx context.Context, email, password string) (*models.Principal, error)
}

// Sessions persists logged-in principals.
type Sessions interface {
	Create(ctx context.Context, p *models.Principal) (string, error)
	Delete(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	auth         Authenticator
	sessions     Sessions
	log          *slog.Logger
	metrics      *metrics.Metrics
	validate     *validator.Validate
	secureCookie bool
}

func NewHandler(
	auth Authenticator,
	sessions Sessions,
	log *slog.Logger,
	m *metrics.Metrics,
	v *validator.Validate,
	secureCookie bool,
) *Handler {
	return &Handler{
		auth:         auth,
		sessions:     sessions,
		log:          log,
		metrics:      m,
		validate:     v,
		secureCookie: secureCookie,
	}
}

// EntryPage describes a sign-in or sign-up form for clients.
type EntryPage struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

var (
	loginPage = EntryPage{
		Action: LoginPath,
		Method: http.MethodPost,
		Fields: []string{"email", "password"},
	}
	registerPage = EntryPage{
		Action: RegisterPath,
		Method: http.MethodPost,
		Fields: []string{"fullName", "phone", "group", "email", "password", "confirmPassword"},
	}
)

// LoginPage is the login entry point. Signed-in users go to their profile.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.entry(w, r, loginPage)
}

// RegisterPage is the registration entry point. Signed-in users go to their profile.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.entry(w, r, registerPage)
}

func (h *Handler) entry(w http.ResponseWriter, r *http.Request, page EntryPage) {
	if PrincipalFrom(r.Context()) != nil {
		http.Redirect(w, r, ProfilePath, http.StatusSeeOther)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(page))
}

// Register creates a student account and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.Handler.Register"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.RegisterRequest
	if err := render.Decode(r, &req); err != nil {
		log.Debug("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.metrics.Registration(metrics.ResultRejected)
		response.WriteValidation(w, r, err)
		return
	}

	p, err := h.auth.Register(r.Context(), req)
	h.metrics.Registration(metrics.ResultOf(err, response.IsClientError))
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if !h.startSession(w, r, log, p) {
		return
	}
	http.Redirect(w, r, ProfilePath, http.StatusSeeOther)
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.Handler.Login"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	var req models.LoginRequest
	if err := render.Decode(r, &req); err != nil {
		log.Debug("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.metrics.Login(metrics.ResultRejected)
		response.WriteValidation(w, r, err)
		return
	}

	p, err := h.auth.Login(r.Context(), req.Email, req.Password)
	h.metrics.Login(metrics.ResultOf(err, response.IsClientError))
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if !h.startSession(w, r, log, p) {
		return
	}
	log.Info("user logged in", slog.Int64("user_id", p.ID))
	http.Redirect(w, r, ProfilePath, http.StatusSeeOther)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.Handler.Logout"

	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.log.Error("failed to delete session",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
		} else {
			h.metrics.SessionDestroyed()
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}

// Me returns the currently authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p == nil {
		response.JSON(w, r, http.StatusUnauthorized, response.Error("not authenticated"))
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(p))
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, log *slog.Logger, p *models.Principal) bool {
	sid, err := h.sessions.Create(r.Context(), p)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return false
	}
	h.metrics.SessionCreated()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL() / time.Second),
	})
	return true
}
