package notification

import (
	"context"
	"fmt"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// defaultTemplates is the fixed template set shipped with the product.
var defaultTemplates = []model.NotificationTemplate{
	{
		Name:            "medication_reminder",
		Type:            model.TypeMedication,
		TitleTemplate:   "Medication Reminder",
		MessageTemplate: "Time to take {medication_name} ({time})",
		IsActive:        true,
	},
	{
		Name:            "new_health_article",
		Type:            model.TypeHealthTip,
		TitleTemplate:   "New Health Tip",
		MessageTemplate: "{article_title}",
		IsActive:        true,
	},
	{
		Name:            "sync_complete",
		Type:            model.TypeSync,
		TitleTemplate:   "Sync Complete",
		MessageTemplate: "{device_name} data synced successfully...",
		IsActive:        true,
	},
	{
		Name:            "general_notification",
		Type:            model.TypeGeneral,
		TitleTemplate:   "{title}",
		MessageTemplate: "{message}",
		IsActive:        true,
	},
}

// SeedTemplates upserts the built-in template set and returns how many were
// newly created. Safe to run on every deploy.
func SeedTemplates(ctx context.Context, templates store.TemplateStore) (int, error) {
	created := 0
	for i := range defaultTemplates {
		t := defaultTemplates[i]
		isNew, err := templates.UpsertByName(ctx, &t)
		if err != nil {
			return created, fmt.Errorf("seed template %q: %w", t.Name, err)
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
