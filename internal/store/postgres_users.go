package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/student-rating/internal/models"
)

const userColumns = `id, full_name, phone, group_name, email, rating, role, avatar, active, created_at`

func scanUser(row pgx.Row, extra ...any) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	dest := append([]any{
		&u.ID, &u.FullName, &u.Phone, &u.Group, &u.Email,
		&u.Rating, &role, &u.Avatar, &u.Active, &u.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	const op = "store.CreateUser"

	role := nu.Role
	if role == "" {
		role = models.RoleStudent
	}
	u, err := scanUser(s.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, phone, group_name, email, password_hash, role, rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		nu.FullName, nu.Phone, nu.Group, strings.ToLower(nu.Email), nu.PasswordHash, string(role), nu.Rating,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "store.GetUserByID"

	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "store.GetUserByEmail"

	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetCredentialsByEmail is the only read that returns the password hash.
func (s *PostgresStore) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	const op = "store.GetCredentialsByEmail"

	var hash string
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`, email,
	), &hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Credentials{User: *u, PasswordHash: hash}, nil
}

// UpdateRating adds delta to the user's rating and returns the new value.
func (s *PostgresStore) UpdateRating(ctx context.Context, id int64, delta int) (int, error) {
	const op = "store.UpdateRating"

	var rating int
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET rating = rating + $2 WHERE id = $1 RETURNING rating`, id, delta,
	).Scan(&rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rating, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) (*models.User, error) {
	const op = "store.UpdateProfile"

	u, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET full_name = $2, phone = $3, group_name = $4
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, p.FullName, p.Phone, p.Group,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id int64, active bool) error {
	const op = "store.SetActive"

	tag, err := s.pool.Exec(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// DeleteStudent removes a student and, through ON DELETE CASCADE, their
// achievements. Non-student accounts are refused.
func (s *PostgresStore) DeleteStudent(ctx context.Context, id int64) error {
	const op = "store.DeleteStudent"

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var role string
		if err := tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrNotFound
			}
			return err
		}
		if models.Role(role) != models.RoleStudent {
			return models.ErrRoleViolation
		}
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListStudents returns students by rating descending, ties by insertion order.
// A non-positive limit returns every student.
func (s *PostgresStore) ListStudents(ctx context.Context, limit int) ([]models.User, error) {
	const op = "store.ListStudents"

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = 'student'
		 ORDER BY rating DESC, id ASC
		 LIMIT $1`, nullableLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// StudentRank returns the 1-based leaderboard position of id, or models.NoRank.
func (s *PostgresStore) StudentRank(ctx context.Context, id int64) (int, error) {
	const op = "store.StudentRank"

	var position int64
	err := s.pool.QueryRow(ctx,
		`SELECT position FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY rating DESC, id ASC) AS position
			FROM users WHERE role = 'student'
		 ) ranked
		 WHERE id = $1`, id,
	).Scan(&position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NoRank, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(position), nil
}
