package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

type preferenceRepo struct {
	db *sql.DB
}

const preferenceColumns = `id, user_id, notification_type, push_enabled, email_enabled, sms_enabled, created_at, updated_at`

func (r *preferenceRepo) EnsureDefault(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error) {
	def := model.DefaultPreference(userID, t)

	// Upsert guarded by the (user_id, notification_type) unique constraint;
	// a concurrent insert loses the race harmlessly.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences
			(id, user_id, notification_type, push_enabled, email_enabled, sms_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, notification_type) DO NOTHING`,
		uuid.New(), userID, t, def.PushEnabled, def.EmailEnabled, def.SMSEnabled,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure default preference: %w", err)
	}

	return r.get(ctx, userID, t)
}

func (r *preferenceRepo) get(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+preferenceColumns+`
		FROM notification_preferences
		WHERE user_id = $1 AND notification_type = $2`,
		userID, t,
	)
	return scanPreference(row)
}

func (r *preferenceRepo) List(ctx context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+preferenceColumns+`
		FROM notification_preferences
		WHERE user_id = $1
		ORDER BY notification_type`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var out []*model.NotificationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *preferenceRepo) Upsert(ctx context.Context, userID uuid.UUID, p store.PreferencePatch) (*model.NotificationPreference, error) {
	def := model.DefaultPreference(userID, p.Type)
	push := orDefault(p.PushEnabled, def.PushEnabled)
	email := orDefault(p.EmailEnabled, def.EmailEnabled)
	sms := orDefault(p.SMSEnabled, def.SMSEnabled)

	// COALESCE keeps unspecified flags at their prior value on conflict;
	// NULLs stand in for "not supplied".
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO notification_preferences
			(id, user_id, notification_type, push_enabled, email_enabled, sms_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, notification_type) DO UPDATE SET
			push_enabled  = COALESCE($7, notification_preferences.push_enabled),
			email_enabled = COALESCE($8, notification_preferences.email_enabled),
			sms_enabled   = COALESCE($9, notification_preferences.sms_enabled),
			updated_at    = NOW()
		RETURNING `+preferenceColumns,
		uuid.New(), userID, p.Type, push, email, sms,
		p.PushEnabled, p.EmailEnabled, p.SMSEnabled,
	)

	pref, err := scanPreference(row)
	if err != nil {
		return nil, fmt.Errorf("upsert preference: %w", err)
	}
	return pref, nil
}

func (r *preferenceRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notification_preferences WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user preferences: %w", err)
	}
	return nil
}

func scanPreference(row rowScanner) (*model.NotificationPreference, error) {
	var p model.NotificationPreference
	err := row.Scan(
		&p.ID, &p.UserID, &p.Type, &p.PushEnabled, &p.EmailEnabled, &p.SMSEnabled,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan preference: %w", err)
	}
	return &p, nil
}

func orDefault(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}
