// Package preference resolves and manages per-(user, type) channel toggles.
package preference

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// UpdateRequest is a partial update for one notification type. Nil flags keep
// their current (or default) value.
type UpdateRequest struct {
	Type         string
	PushEnabled  *bool
	EmailEnabled *bool
	SMSEnabled   *bool
}

type Service interface {
	// Resolve returns the effective preference for (user, type), creating the
	// default row on first touch. It never returns a miss for a valid type.
	Resolve(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error)
	Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*model.NotificationPreference, error)
	BulkUpdate(ctx context.Context, userID uuid.UUID, reqs []UpdateRequest) ([]*model.NotificationPreference, error)
	// SeedDefaults creates the default row for every notification type;
	// called when an account is created.
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
}

type preferenceService struct {
	prefs store.PreferenceStore
}

func New(prefs store.PreferenceStore) Service {
	return &preferenceService{prefs: prefs}
}

func (s *preferenceService) Resolve(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error) {
	p, err := s.prefs.EnsureDefault(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("resolve preference: %w", err)
	}
	return p, nil
}

func (s *preferenceService) List(ctx context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error) {
	// Materialize defaults first so the listing is always complete.
	for _, t := range model.Types() {
		if _, err := s.prefs.EnsureDefault(ctx, userID, t); err != nil {
			return nil, fmt.Errorf("ensure default for %s: %w", t, err)
		}
	}

	prefs, err := s.prefs.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

func (s *preferenceService) Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*model.NotificationPreference, error) {
	if !model.ValidType(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	p, err := s.prefs.Upsert(ctx, userID, store.PreferencePatch{
		Type:         model.NotificationType(req.Type),
		PushEnabled:  req.PushEnabled,
		EmailEnabled: req.EmailEnabled,
		SMSEnabled:   req.SMSEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("update preference: %w", err)
	}
	return p, nil
}

func (s *preferenceService) BulkUpdate(ctx context.Context, userID uuid.UUID, reqs []UpdateRequest) ([]*model.NotificationPreference, error) {
	// Validate everything up front so a bad entry doesn't leave a partial
	// batch applied.
	for _, req := range reqs {
		if !model.ValidType(req.Type) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
		}
	}

	out := make([]*model.NotificationPreference, 0, len(reqs))
	for _, req := range reqs {
		p, err := s.Update(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *preferenceService) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	for _, t := range model.Types() {
		if _, err := s.prefs.EnsureDefault(ctx, userID, t); err != nil {
			return fmt.Errorf("seed default for %s: %w", t, err)
		}
	}
	return nil
}
