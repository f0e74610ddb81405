// Package site serves the public pages and the student profile.
package site

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ayush/student-rating/internal/auth"
	"github.com/ayush/student-rating/internal/lib/params"
	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/models"
	"github.com/ayush/student-rating/internal/rating"
	"github.com/ayush/student-rating/internal/response"
)

const (
	homeStudents      = 3
	homeNews          = 3
	relatedNews       = 3
	defaultBoardLimit = 100
	maxBoardLimit     = 1000
	defaultNewsLimit  = 50
	maxNewsLimit      = 200
)

type Leaderboard interface {
	TopStudents(ctx context.Context, limit int) ([]rating.Standing, error)
	Rank(ctx context.Context, id int64) (int, error)
}

type NewsReader interface {
	ListNews(ctx context.Context, excludeID int64, limit int) ([]models.News, error)
	GetNews(ctx context.Context, id int64) (*models.News, error)
}

type Profiles interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) (*models.User, error)
	ListAchievements(ctx context.Context, studentID int64) ([]models.Achievement, error)
}

type Handler struct {
	board    Leaderboard
	news     NewsReader
	profiles Profiles
	log      *slog.Logger
	validate *validator.Validate
}

func NewHandler(board Leaderboard, news NewsReader, profiles Profiles, log *slog.Logger, v *validator.Validate) *Handler {
	return &Handler{board: board, news: news, profiles: profiles, log: log, validate: v}
}

type HomePage struct {
	TopStudents []rating.Standing `json:"top_students"`
	LatestNews  []models.News     `json:"latest_news"`
}

type NewsPage struct {
	News  *models.News  `json:"news"`
	Other []models.News `json:"other"`
}

type ProfilePage struct {
	User         *models.User         `json:"user"`
	Achievements []models.Achievement `json:"achievements"`
	// Rank is null for accounts that are not on the leaderboard.
	Rank *int `json:"rank"`
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))
}

// Home returns the top students and the latest news.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.Home")

	top, err := h.board.TopStudents(r.Context(), homeStudents)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	latest, err := h.news.ListNews(r.Context(), 0, homeNews)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(HomePage{TopStudents: top, LatestNews: latest}))
}

// Rating returns the leaderboard.
func (h *Handler) Rating(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.Rating")

	limit := params.Limit(r, "limit", defaultBoardLimit, maxBoardLimit)
	top, err := h.board.TopStudents(r.Context(), limit)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(top))
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.ListNews")

	limit := params.Limit(r, "limit", defaultNewsLimit, maxNewsLimit)
	list, err := h.news.ListNews(r.Context(), 0, limit)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(list))
}

// GetNews returns one post and a few others to read next.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.GetNews")

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	n, err := h.news.GetNews(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	other, err := h.news.ListNews(r.Context(), id, relatedNews)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.OK(NewsPage{News: n, Other: other}))
}

// Profile returns the signed-in user with their achievements and rank.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.Profile")

	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	u, err := h.profiles.GetUserByID(r.Context(), p.ID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	achievements, err := h.profiles.ListAchievements(r.Context(), u.ID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	page := ProfilePage{User: u, Achievements: achievements}

	rank, err := h.board.Rank(r.Context(), u.ID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if rank != models.NoRank {
		page.Rank = &rank
	}
	response.JSON(w, r, http.StatusOK, response.OK(page))
}

// UpdateProfile edits the signed-in user's name, phone and group.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "site.Handler.UpdateProfile")

	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	var req models.ProfileRequest
	if err := render.Decode(r, &req); err != nil {
		log.Debug("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.WriteValidation(w, r, err)
		return
	}

	u, err := h.profiles.UpdateProfile(r.Context(), p.ID, models.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Group:    req.Group,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	log.Info("profile updated", slog.Int64("user_id", u.ID))
	response.JSON(w, r, http.StatusOK, response.OK(u))
}
