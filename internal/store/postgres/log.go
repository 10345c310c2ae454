package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
)

type logRepo struct {
	db *sql.DB
}

func (r *logRepo) Append(ctx context.Context, l *model.NotificationLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.AttemptedAt.IsZero() {
		l.AttemptedAt = time.Now()
	}

	resp, err := marshalJSON(l.ResponseData)
	if err != nil {
		return fmt.Errorf("encode response data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notification_logs
			(id, notification_id, delivery_method, status, error_message, response_data, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.NotificationID, l.Channel, l.Status, nullIfEmpty(l.ErrorMessage), resp, l.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("append notification log: %w", err)
	}
	return nil
}

func (r *logRepo) ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]*model.NotificationLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, notification_id, delivery_method, status, error_message, response_data, attempted_at
		FROM notification_logs
		WHERE notification_id = $1
		ORDER BY attempted_at ASC`,
		notificationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	var out []*model.NotificationLog
	for rows.Next() {
		var (
			l      model.NotificationLog
			errMsg sql.NullString
			resp   []byte
		)
		if err := rows.Scan(&l.ID, &l.NotificationID, &l.Channel, &l.Status, &errMsg, &resp, &l.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		l.ErrorMessage = errMsg.String
		if l.ResponseData, err = unmarshalJSON(resp); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
