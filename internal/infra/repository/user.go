package repository

import (
	"context"
	"errors"
	"time"

	"garage-reservation/internal/domain/user"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewUserRepository(db *pgxpool.Pool, cfg config.Config) *UserRepository {
	return &UserRepository{
		db:      db,
		timeout: cfg.Garage.StorageTimeout,
	}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		id           uuid.UUID
		passwordHash string
		role         string
		studentID    string
		createdAt    pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx,
		`SELECT id, password_hash, role, student_id, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&id, &passwordHash, &role, &studentID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, infra.WrapRepoErr("failed to find user", err, infra.KindUnavailable)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	return user.ReconstructUser(id, username, passwordHash, user.Role(role), studentID, createdAt.Time), nil
}
