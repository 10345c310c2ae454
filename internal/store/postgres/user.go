package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var (
		u     model.User
		phone sql.NullString
		name  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, phone, full_name, created_at
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &phone, &name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Phone = phone.String
	u.FullName = name.String
	return &u, nil
}

func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, phone, full_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email     = EXCLUDED.email,
			phone     = EXCLUDED.phone,
			full_name = EXCLUDED.full_name`,
		u.ID, u.Email, nullIfEmpty(u.Phone), nullIfEmpty(u.FullName),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
