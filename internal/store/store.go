// Package store defines the persistence boundary of the notification
// pipeline. Services depend on these interfaces; the postgres subpackage
// implements them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist or does not
// belong to the requesting user.
var ErrNotFound = errors.New("store: record not found")

// ListFilter narrows a notification listing. Nil fields are ignored.
type ListFilter struct {
	IsRead   *bool
	Type     *model.NotificationType
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// NotificationStats is the aggregate view behind the stats endpoint.
type NotificationStats struct {
	Total  int                            `json:"total_notifications"`
	Unread int                            `json:"unread_notifications"`
	ByType map[model.NotificationType]int `json:"notifications_by_type"`
	Recent []*model.Notification          `json:"recent_notifications"`
}

// PreferencePatch is a partial preference update; nil flags retain the
// current (or default) value.
type PreferencePatch struct {
	Type         model.NotificationType
	PushEnabled  *bool
	EmailEnabled *bool
	SMSEnabled   *bool
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	Get(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]*model.Notification, error)
	Stats(ctx context.Context, userID uuid.UUID, recent int) (*NotificationStats, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)

	// MarkRead returns false when the notification does not exist or belongs
	// to another user; it never errors for that case.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	SetRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, read bool) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error

	// Claim atomically moves a notification from pending to sending and is
	// the at-most-once guard for dispatch. Returns false if the notification
	// was not in pending state.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// ListDue returns pending notifications whose scheduled_for has passed
	// (or was never set), oldest first, capped at limit.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Notification, error)
}

type PreferenceStore interface {
	// EnsureDefault upserts the default-on-push preference for (user, type)
	// guarded by the unique constraint, then returns the stored row. An
	// existing row is returned untouched.
	EnsureDefault(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error)
	Upsert(ctx context.Context, userID uuid.UUID, p PreferencePatch) (*model.NotificationPreference, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type DeviceTokenStore interface {
	// Register upserts on the globally unique token: an existing token is
	// reassigned to the given user/device type and reactivated.
	Register(ctx context.Context, userID uuid.UUID, token string, dt model.DeviceType) (*model.DeviceToken, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*model.DeviceToken, error)
	// GetByToken returns the user's token row, active or not; ErrNotFound
	// when the token does not exist or belongs to another user.
	GetByToken(ctx context.Context, userID uuid.UUID, token string) (*model.DeviceToken, error)
	Deactivate(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// DeactivateToken disables a token regardless of owner; used when the
	// push gateway reports it as unregistered.
	DeactivateToken(ctx context.Context, token string) error
	TouchLastUsed(ctx context.Context, token string, at time.Time) error
}

type TemplateStore interface {
	// GetActiveByName returns ErrNotFound for unknown or inactive names.
	GetActiveByName(ctx context.Context, name string) (*model.NotificationTemplate, error)
	ListActive(ctx context.Context) ([]*model.NotificationTemplate, error)
	// UpsertByName seeds or refreshes a template; returns true when created.
	UpsertByName(ctx context.Context, t *model.NotificationTemplate) (bool, error)
}

type LogStore interface {
	// Append inserts one delivery-attempt record. Log rows are never updated.
	Append(ctx context.Context, l *model.NotificationLog) error
	ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]*model.NotificationLog, error)
}

type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Upsert(ctx context.Context, u *model.User) error
}
