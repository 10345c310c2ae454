package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

type deviceTokenRepo struct {
	db *sql.DB
}

const deviceColumns = `id, user_id, token, device_type, is_active, last_used, created_at`

func (r *deviceTokenRepo) Register(ctx context.Context, userID uuid.UUID, token string, dt model.DeviceType) (*model.DeviceToken, error) {
	// Tokens are globally unique; re-registering an existing one reassigns
	// it to the new owner and reactivates it (device re-install/transfer).
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO device_tokens (id, user_id, token, device_type, is_active, last_used)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (token) DO UPDATE SET
			user_id     = EXCLUDED.user_id,
			device_type = EXCLUDED.device_type,
			is_active   = TRUE,
			last_used   = NOW()
		RETURNING `+deviceColumns,
		uuid.New(), userID, token, dt,
	)

	d, err := scanDeviceToken(row)
	if err != nil {
		return nil, fmt.Errorf("register device token: %w", err)
	}
	return d, nil
}

func (r *deviceTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*model.DeviceToken, error) {
	query := `SELECT ` + deviceColumns + ` FROM device_tokens WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var out []*model.DeviceToken
	for rows.Next() {
		d, err := scanDeviceToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deviceTokenRepo) GetByToken(ctx context.Context, userID uuid.UUID, token string) (*model.DeviceToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+deviceColumns+` FROM device_tokens
		WHERE user_id = $1 AND token = $2`,
		userID, token,
	)
	return scanDeviceToken(row)
}

func (r *deviceTokenRepo) Deactivate(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE device_tokens SET is_active = FALSE
		WHERE user_id = $1 AND token = $2`,
		userID, token,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate device token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *deviceTokenRepo) DeactivateToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE device_tokens SET is_active = FALSE WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("deactivate stale token: %w", err)
	}
	return nil
}

func (r *deviceTokenRepo) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE device_tokens SET last_used = $2 WHERE token = $1`,
		token, at,
	)
	if err != nil {
		return fmt.Errorf("touch device token: %w", err)
	}
	return nil
}

func scanDeviceToken(row rowScanner) (*model.DeviceToken, error) {
	var d model.DeviceToken
	err := row.Scan(&d.ID, &d.UserID, &d.Token, &d.DeviceType, &d.IsActive, &d.LastUsed, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan device token: %w", err)
	}
	return &d, nil
}
