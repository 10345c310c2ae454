package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/render"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	UserID       uuid.UUID
	Type         string
	Title        string
	Message      string
	ScheduledFor *time.Time
	Metadata     map[string]any
}

type TemplateRequest struct {
	UserID       uuid.UUID
	TemplateName string
	Variables    map[string]string
	ScheduledFor *time.Time
	Metadata     map[string]any
}

type ListRequest struct {
	Page       int
	PerPage    int
	UnreadOnly bool
	Type       string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Bulk actions accepted by BulkAction.
const (
	ActionMarkRead   = "mark_read"
	ActionMarkUnread = "mark_unread"
	ActionDelete     = "delete"
)

type BulkRequest struct {
	Action string
	IDs    []uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.Notification, error)
	CreateFromTemplate(ctx context.Context, req TemplateRequest) (*model.Notification, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, req ListRequest) ([]*model.Notification, error)
	Stats(ctx context.Context, userID uuid.UUID) (*store.NotificationStats, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	SetRead(ctx context.Context, id, userID uuid.UUID, read bool) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	BulkAction(ctx context.Context, userID uuid.UUID, req BulkRequest) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Logs(ctx context.Context, id, userID uuid.UUID) ([]*model.NotificationLog, error)
	ListTemplates(ctx context.Context) ([]*model.NotificationTemplate, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	notifications store.NotificationStore
	templates     store.TemplateStore
	logs          store.LogStore
	cache         *unreadCache
}

// New builds the notification service. rdb may be nil, in which case the
// unread-count cache is skipped and every count hits the database.
func New(
	notifications store.NotificationStore,
	templates store.TemplateStore,
	logs store.LogStore,
	rdb *redis.Client,
) Service {
	return &notificationService{
		notifications: notifications,
		templates:     templates,
		logs:          logs,
		cache:         newUnreadCache(rdb),
	}
}

func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*model.Notification, error) {
	if !model.ValidType(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	n := &model.Notification{
		UserID:       req.UserID,
		Type:         model.NotificationType(req.Type),
		Title:        req.Title,
		Message:      req.Message,
		Status:       model.StatusPending,
		ScheduledFor: req.ScheduledFor,
		Metadata:     req.Metadata,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.cache.Invalidate(ctx, req.UserID)
	return n, nil
}

func (s *notificationService) CreateFromTemplate(ctx context.Context, req TemplateRequest) (*model.Notification, error) {
	tpl, err := s.templates.GetActiveByName(ctx, req.TemplateName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, req.TemplateName)
		}
		return nil, fmt.Errorf("load template: %w", err)
	}

	title, message, err := render.Pair(tpl.TitleTemplate, tpl.MessageTemplate, req.Variables)
	if err != nil {
		return nil, fmt.Errorf("render template %q: %w", req.TemplateName, err)
	}

	return s.Create(ctx, CreateRequest{
		UserID:       req.UserID,
		Type:         string(tpl.Type),
		Title:        title,
		Message:      message,
		ScheduledFor: req.ScheduledFor,
		Metadata:     req.Metadata,
	})
}

func (s *notificationService) Get(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	n, err := s.notifications.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, req ListRequest) ([]*model.Notification, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	f := store.ListFilter{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}
	if req.UnreadOnly {
		unread := false
		f.IsRead = &unread
	}
	if req.Type != "" {
		if !model.ValidType(req.Type) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
		}
		t := model.NotificationType(req.Type)
		f.Type = &t
	}

	notifs, err := s.notifications.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (s *notificationService) Stats(ctx context.Context, userID uuid.UUID) (*store.NotificationStats, error) {
	stats, err := s.notifications.Stats(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	return stats, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if n, ok := s.cache.Get(ctx, userID); ok {
		return n, nil
	}

	n, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	s.cache.Set(ctx, userID, n)
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) SetRead(ctx context.Context, id, userID uuid.UUID, read bool) error {
	n, err := s.notifications.SetRead(ctx, userID, []uuid.UUID{id}, read)
	if err != nil {
		return fmt.Errorf("set read: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return n, nil
}

func (s *notificationService) BulkAction(ctx context.Context, userID uuid.UUID, req BulkRequest) (int64, error) {
	var (
		n   int64
		err error
	)
	switch req.Action {
	case ActionMarkRead:
		n, err = s.notifications.SetRead(ctx, userID, req.IDs, true)
	case ActionMarkUnread:
		n, err = s.notifications.SetRead(ctx, userID, req.IDs, false)
	case ActionDelete:
		n, err = s.notifications.DeleteMany(ctx, userID, req.IDs)
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}
	if err != nil {
		return 0, fmt.Errorf("bulk %s: %w", req.Action, err)
	}
	s.cache.Invalidate(ctx, userID)
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.notifications.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) Logs(ctx context.Context, id, userID uuid.UUID) ([]*model.NotificationLog, error) {
	// Ownership check before exposing delivery history.
	if _, err := s.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByNotification(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list delivery logs: %w", err)
	}
	return logs, nil
}

func (s *notificationService) ListTemplates(ctx context.Context) ([]*model.NotificationTemplate, error) {
	tpls, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tpls, nil
}

// ---------------------------------------------------------------------------
// Unread-count cache
// ---------------------------------------------------------------------------

const unreadTTL = time.Minute

type unreadCache struct {
	rdb *redis.Client
}

func newUnreadCache(rdb *redis.Client) *unreadCache {
	return &unreadCache{rdb: rdb}
}

func unreadKey(userID uuid.UUID) string {
	return "notification:unread:" + userID.String()
}

// Get returns the cached count. Cache errors are treated as misses; the
// database is always there.
func (c *unreadCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	if c.rdb == nil {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *unreadCache) Set(ctx context.Context, userID uuid.UUID, n int) {
	if c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, unreadKey(userID), strconv.Itoa(n), unreadTTL)
}

func (c *unreadCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, unreadKey(userID))
}
