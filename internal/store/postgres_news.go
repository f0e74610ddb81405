package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/student-rating/internal/models"
)

const newsColumns = `id, author_id, title, content, image, created_at`

func scanNews(row pgx.Row) (*models.News, error) {
	var n models.News
	if err := row.Scan(&n.ID, &n.AuthorID, &n.Title, &n.Content, &n.Image, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *PostgresStore) CreateNews(ctx context.Context, n *models.News) (*models.News, error) {
	const op = "store.CreateNews"

	created, err := scanNews(s.pool.QueryRow(ctx,
		`INSERT INTO news (author_id, title, content, image)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+newsColumns,
		n.AuthorID, n.Title, n.Content, n.Image,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (s *PostgresStore) GetNews(ctx context.Context, id int64) (*models.News, error) {
	const op = "store.GetNews"

	n, err := scanNews(s.pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *PostgresStore) DeleteNews(ctx context.Context, id int64) error {
	const op = "store.DeleteNews"

	tag, err := s.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListNews returns news newest first. excludeID 0 excludes nothing; a
// non-positive limit returns everything.
func (s *PostgresStore) ListNews(ctx context.Context, excludeID int64, limit int) ([]models.News, error) {
	const op = "store.ListNews"

	rows, err := s.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news
		 WHERE id <> $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, excludeID, nullableLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []models.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
