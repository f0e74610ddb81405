package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/student-rating/internal/models"
)

// ApplyAward increments the student's rating and appends the achievement in
// one transaction. The student row is locked first so concurrent awards to the
// same student serialize.
func (s *PostgresStore) ApplyAward(ctx context.Context, a *models.Achievement) (int, error) {
	const op = "store.ApplyAward"

	var rating int
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var role string
		if err := tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, a.StudentID).Scan(&role); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotFound
			}
			return err
		}
		if models.Role(role) != models.RoleStudent {
			return models.ErrNotAStudent
		}

		if err := tx.QueryRow(ctx,
			`UPDATE users SET rating = rating + $2 WHERE id = $1 RETURNING rating`,
			a.StudentID, a.Points,
		).Scan(&rating); err != nil {
			return err
		}

		return tx.QueryRow(ctx,
			`INSERT INTO achievements (student_id, title, description, category, points, approved, evidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			a.StudentID, a.Title, a.Description, a.Category, a.Points, a.Approved, a.Evidence,
		).Scan(&a.ID, &a.CreatedAt)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rating, nil
}

func (s *PostgresStore) ListAchievements(ctx context.Context, studentID int64) ([]models.Achievement, error) {
	const op = "store.ListAchievements"

	rows, err := s.pool.Query(ctx,
		`SELECT id, student_id, title, description, category, points, approved, evidence, created_at
		 FROM achievements
		 WHERE student_id = $1
		 ORDER BY created_at DESC, id DESC`, studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []models.Achievement{}
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Title, &a.Description, &a.Category,
			&a.Points, &a.Approved, &a.Evidence, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
