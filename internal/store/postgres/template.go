package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

type templateRepo struct {
	db *sql.DB
}

const templateColumns = `id, name, notification_type, title_template, message_template, is_active, created_at, updated_at`

func (r *templateRepo) GetActiveByName(ctx context.Context, name string) (*model.NotificationTemplate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM notification_templates
		WHERE name = $1 AND is_active`,
		name,
	)
	return scanTemplate(row)
}

func (r *templateRepo) ListActive(ctx context.Context) ([]*model.NotificationTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM notification_templates
		WHERE is_active
		ORDER BY notification_type, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*model.NotificationTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *templateRepo) UpsertByName(ctx context.Context, t *model.NotificationTemplate) (bool, error) {
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notification_templates
			(id, name, notification_type, title_template, message_template, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			notification_type = EXCLUDED.notification_type,
			title_template    = EXCLUDED.title_template,
			message_template  = EXCLUDED.message_template,
			is_active         = EXCLUDED.is_active,
			updated_at        = NOW()
		RETURNING (xmax = 0)`,
		uuid.New(), t.Name, t.Type, t.TitleTemplate, t.MessageTemplate, t.IsActive,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert template %q: %w", t.Name, err)
	}
	return created, nil
}

func scanTemplate(row rowScanner) (*model.NotificationTemplate, error) {
	var t model.NotificationTemplate
	err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.TitleTemplate, &t.MessageTemplate, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return &t, nil
}
