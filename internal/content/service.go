// Package content manages news posts.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayush/student-rating/internal/models"
)

type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateNews(ctx context.Context, n *models.News) (*models.News, error)
	GetNews(ctx context.Context, id int64) (*models.News, error)
	DeleteNews(ctx context.Context, id int64) error
	ListNews(ctx context.Context, excludeID int64, limit int) ([]models.News, error)
}

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// AddNews publishes a post. The author must currently be an administrator.
func (s *Service) AddNews(ctx context.Context, authorID int64, title, body, image string) (*models.News, error) {
	const op = "content.Service.AddNews"

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrMissingField)
	}

	author, err := s.store.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !author.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	n, err := s.store.CreateNews(ctx, &models.News{
		AuthorID: authorID,
		Title:    title,
		Content:  body,
		Image:    strings.TrimSpace(image),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("news published", slog.Int64("news_id", n.ID), slog.Int64("author_id", authorID))
	return n, nil
}

func (s *Service) DeleteNews(ctx context.Context, id int64) error {
	if err := s.store.DeleteNews(ctx, id); err != nil {
		return fmt.Errorf("content.Service.DeleteNews: %w", err)
	}
	s.log.Info("news deleted", slog.Int64("news_id", id))
	return nil
}

// ListNews returns posts newest first, skipping excludeID. limit <= 0 means all.
func (s *Service) ListNews(ctx context.Context, excludeID int64, limit int) ([]models.News, error) {
	list, err := s.store.ListNews(ctx, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("content.Service.ListNews: %w", err)
	}
	return list, nil
}

func (s *Service) GetNews(ctx context.Context, id int64) (*models.News, error) {
	n, err := s.store.GetNews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("content.Service.GetNews: %w", err)
	}
	return n, nil
}
