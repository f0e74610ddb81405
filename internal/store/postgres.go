package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore handles users, achievements and news against PostgreSQL.
type PostgresStore struct {
	pool Pool
}

func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables and indexes if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			full_name     VARCHAR(200) NOT NULL,
			phone         VARCHAR(32)  NOT NULL,
			group_name    VARCHAR(50)  NOT NULL,
			email         VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			rating        INTEGER      NOT NULL DEFAULT 0,
			role          VARCHAR(16)  NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
			avatar        TEXT         NOT NULL DEFAULT '',
			active        BOOLEAN      NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email));
		CREATE INDEX IF NOT EXISTS users_role_rating_idx ON users (role, rating DESC, id);

		CREATE TABLE IF NOT EXISTS achievements (
			id          BIGSERIAL PRIMARY KEY,
			student_id  BIGINT       NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			title       VARCHAR(200) NOT NULL,
			description TEXT         NOT NULL,
			category    VARCHAR(50)  NOT NULL,
			points      INTEGER      NOT NULL,
			approved    BOOLEAN      NOT NULL DEFAULT FALSE,
			evidence    TEXT         NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS achievements_student_idx ON achievements (student_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS news (
			id         BIGSERIAL PRIMARY KEY,
			author_id  BIGINT       NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			title      VARCHAR(300) NOT NULL,
			content    TEXT         NOT NULL,
			image      TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// withTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic; panics are rethrown.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// nullableLimit turns a non-positive limit into SQL NULL, which LIMIT treats as "no limit".
func nullableLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
