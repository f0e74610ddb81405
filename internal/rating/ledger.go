// Package rating awards points to students and ranks them on the leaderboard.
package rating

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayush/student-rating/internal/models"
)

const (
	MinAward = 1
	MaxAward = 100

	CategoryAward = "award"
	defaultTitle  = "Points awarded"
)

// Store is the storage the ledger depends on. ApplyAward must raise the
// rating and append the achievement as one atomic unit.
type Store interface {
	ApplyAward(ctx context.Context, a *models.Achievement) (int, error)
	ListStudents(ctx context.Context, limit int) ([]models.User, error)
	StudentRank(ctx context.Context, id int64) (int, error)
}

// Standing is a student together with their leaderboard position.
type Standing struct {
	Rank int `json:"rank"`
	models.User
}

type Ledger struct {
	store Store
	log   *slog.Logger
}

func NewLedger(store Store, log *slog.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// AwardPoints grants points to a student and records the matching achievement.
func (l *Ledger) AwardPoints(ctx context.Context, studentID int64, points int, note string) (*models.Achievement, error) {
	const op = "rating.Ledger.AwardPoints"

	if points < MinAward || points > MaxAward {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidAmount)
	}

	title := strings.TrimSpace(note)
	if title == "" {
		title = defaultTitle
	}
	a := &models.Achievement{
		StudentID:   studentID,
		Title:       title,
		Description: fmt.Sprintf("Awarded %d points by an administrator", points),
		Category:    CategoryAward,
		Points:      points,
		Approved:    true,
	}

	newRating, err := l.store.ApplyAward(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l.log.Info("points awarded",
		slog.Int64("student_id", studentID),
		slog.Int("points", points),
		slog.Int("rating", newRating),
	)
	return a, nil
}

// TopStudents returns the leaderboard head. limit <= 0 returns every student.
func (l *Ledger) TopStudents(ctx context.Context, limit int) ([]Standing, error) {
	const op = "rating.Ledger.TopStudents"

	users, err := l.store.ListStudents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	standings := make([]Standing, len(users))
	for i, u := range users {
		standings[i] = Standing{Rank: i + 1, User: u}
	}
	return standings, nil
}

// Rank returns the 1-based leaderboard position of id, or models.NoRank.
func (l *Ledger) Rank(ctx context.Context, id int64) (int, error) {
	rank, err := l.store.StudentRank(ctx, id)
	if err != nil {
		return models.NoRank, fmt.Errorf("rating.Ledger.Rank: %w", err)
	}
	return rank, nil
}
