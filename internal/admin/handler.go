// Package admin serves the administrator dashboard and its actions.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/lib/params"
	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/metrics"
	"github.com/ayush/student-rating/internal/models"
	"github.com/ayush/student-rating/internal/rating"
	"github.com/ayush/student-rating/internal/response"
)

type Provisioner interface {
	ProvisionStudent(ctx context.Context, req models.AddStudentRequest) (*models.User, error)
}

type Ledger interface {
	AwardPoints(ctx context.Context, studentID int64, points int, note string) (*models.Achievement, error)
	TopStudents(ctx context.Context, limit int) ([]rating.Standing, error)
}

type Accounts interface {
	DeleteStudent(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type Content interface {
	AddNews(ctx context.Context, authorID int64, title, body, image string) (*models.News, error)
	DeleteNews(ctx context.Context, id int64) error
	ListNews(ctx context.Context, excludeID int64, limit int) ([]models.News, error)
}

type Handler struct {
	provisioner Provisioner
	ledger      Ledger
	accounts    Accounts
	content     Content
	log         *slog.Logger
	metrics     *metrics.Metrics
	validate    *validator.Validate
}

func NewHandler(
	provisioner Provisioner,
	ledger Ledger,
	accounts Accounts,
	content Content,
	log *slog.Logger,
	m *metrics.Metrics,
	v *validator.Validate,
) *Handler {
	return &Handler{
		provisioner: provisioner,
		ledger:      ledger,
		accounts:    accounts,
		content:     content,
		log:         log,
		metrics:     m,
		validate:    v,
	}
}

type Dashboard struct {
	Students []rating.Standing `json:"students"`
	News     []models.News     `json:"news"`
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := render.Decode(r, v); err != nil {
		log.Debug("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		response.WriteValidation(w, r, err)
		return false
	}
	return true
}

// Dashboard lists every student in leaderboard order and all news.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.Dashboard")

	students, err := h.ledger.TopStudents(r.Context(), 0)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	news, err := h.content.ListNews(r.Context(), 0, 0)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(Dashboard{Students: students, News: news}))
}

func (h *Handler) AddStudent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.AddStudent")

	var req models.AddStudentRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	u, err := h.provisioner.ProvisionStudent(r.Context(), req)
	h.metrics.Registration(metrics.ResultOf(err, response.IsClientError))
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, response.OK(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.DeleteUser")

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.accounts.DeleteStudent(r.Context(), id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("student deleted", slog.Int64("user_id", id))
	response.JSON(w, r, http.StatusOK, response.OK(nil))
}

// AddPoints awards 1 to 100 points to a student.
func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.AddPoints")

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.AddPointsRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	points, err := strconv.Atoi(strings.TrimSpace(string(req.Points)))
	if err != nil {
		h.metrics.Award(metrics.ResultRejected, 0)
		response.WriteError(w, r, log, models.ErrInvalidAmount)
		return
	}

	a, err := h.ledger.AwardPoints(r.Context(), id, points, req.Note)
	h.metrics.Award(metrics.ResultOf(err, response.IsClientError), points)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(a))
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.SetActive")

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req models.SetActiveRequest
	if !h.decode(w, r, log, &req) {
		return
	}
	if p := auth.PrincipalFrom(r.Context()); p != nil && p.ID == id && !req.Active {
		// admins cannot disable their own account
		response.WriteError(w, r, log, models.ErrInvalidInput)
		return
	}

	if err := h.accounts.SetActive(r.Context(), id, req.Active); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("account status changed", slog.Int64("user_id", id), slog.Bool("active", req.Active))
	response.JSON(w, r, http.StatusOK, response.OK(nil))
}

func (h *Handler) AddNews(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.AddNews")

	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		response.WriteError(w, r, log, models.ErrForbidden)
		return
	}
	var req models.AddNewsRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	n, err := h.content.AddNews(r.Context(), p.ID, req.Title, req.Content, req.Image)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, response.OK(n))
}

func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "admin.Handler.DeleteNews")

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.content.DeleteNews(r.Context(), id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(nil))
}
