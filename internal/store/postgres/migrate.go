package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the notification schema. Statements are idempotent so the
// command can run on every deploy.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL,
		phone      TEXT,
		full_name  TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL,
		type          TEXT NOT NULL,
		title         TEXT NOT NULL,
		message       TEXT NOT NULL,
		metadata      JSONB NOT NULL DEFAULT '{}',
		status        TEXT NOT NULL DEFAULT 'pending',
		is_read       BOOLEAN NOT NULL DEFAULT FALSE,
		scheduled_for TIMESTAMPTZ,
		sent_at       TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_read
		ON notifications (user_id, is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_created
		ON notifications (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status_scheduled
		ON notifications (status, scheduled_for)`,

	`CREATE TABLE IF NOT EXISTS notification_preferences (
		id                UUID PRIMARY KEY,
		user_id           UUID NOT NULL,
		notification_type TEXT NOT NULL,
		push_enabled      BOOLEAN NOT NULL DEFAULT TRUE,
		email_enabled     BOOLEAN NOT NULL DEFAULT FALSE,
		sms_enabled       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, notification_type)
	)`,

	`CREATE TABLE IF NOT EXISTS device_tokens (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL,
		token       TEXT NOT NULL UNIQUE,
		device_type TEXT NOT NULL,
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		last_used   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_device_tokens_user_active
		ON device_tokens (user_id, is_active)`,

	`CREATE TABLE IF NOT EXISTS notification_templates (
		id                UUID PRIMARY KEY,
		name              TEXT NOT NULL UNIQUE,
		notification_type TEXT NOT NULL,
		title_template    TEXT NOT NULL,
		message_template  TEXT NOT NULL,
		is_active         BOOLEAN NOT NULL DEFAULT TRUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notification_logs (
		id              UUID PRIMARY KEY,
		notification_id UUID NOT NULL REFERENCES notifications (id) ON DELETE CASCADE,
		delivery_method TEXT NOT NULL,
		status          TEXT NOT NULL,
		error_message   TEXT,
		response_data   JSONB NOT NULL DEFAULT '{}',
		attempted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notification_logs_notification
		ON notification_logs (notification_id, attempted_at)`,
}
