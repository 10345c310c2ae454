package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/service/notification"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrInvalidType),
		errors.Is(err, notification.ErrInvalidAction):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /notifications
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var body struct {
		Type         string         `json:"type"`
		Title        string         `json:"title"`
		Message      string         `json:"message"`
		ScheduledFor string         `json:"scheduled_for"`
		Metadata     map[string]any `json:"metadata"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Title == "" {
		return badRequest(c, "title is required")
	}

	req := notification.CreateRequest{
		UserID:   claims.UserID,
		Type:     body.Type,
		Title:    body.Title,
		Message:  body.Message,
		Metadata: body.Metadata,
	}
	if body.ScheduledFor != "" {
		t, err := time.Parse(time.RFC3339, body.ScheduledFor)
		if err != nil {
			return badRequest(c, "invalid scheduled_for, want RFC 3339")
		}
		req.ScheduledFor = &t
	}

	n, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return created(c, n)
}

// GET /notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var q struct {
		UnreadOnly bool   `query:"unread_only"`
		Type       string `query:"type"`
		Page       int    `query:"page"`
		PerPage    int    `query:"per_page"`
		DateFrom   string `query:"date_from"`
		DateTo     string `query:"date_to"`
	}
	_ = c.Bind().Query(&q)

	req := notification.ListRequest{
		Page:       q.Page,
		PerPage:    q.PerPage,
		UnreadOnly: q.UnreadOnly,
		Type:       q.Type,
	}
	if q.DateFrom != "" {
		t, err := time.Parse(time.RFC3339, q.DateFrom)
		if err != nil {
			return badRequest(c, "invalid date_from, want RFC 3339")
		}
		req.DateFrom = &t
	}
	if q.DateTo != "" {
		t, err := time.Parse(time.RFC3339, q.DateTo)
		if err != nil {
			return badRequest(c, "invalid date_to, want RFC 3339")
		}
		req.DateTo = &t
	}

	notifs, err := h.svc.List(c.Context(), claims.UserID, req)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, notifs)
}

// GET /notifications/stats
func (h *NotificationHandler) Stats(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	stats, err := h.svc.Stats(c.Context(), claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, stats)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	n, err := h.svc.UnreadCount(c.Context(), claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{"unread_count": n})
}

// GET /notifications/:id
func (h *NotificationHandler) Get(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	n, err := h.svc.Get(c.Context(), id, claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, n)
}

// GET /notifications/:id/logs
func (h *NotificationHandler) Logs(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	logs, err := h.svc.Logs(c.Context(), id, claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, logs)
}

// PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.MarkRead(c.Context(), id, claims.UserID); err != nil {
		return mapNotificationError(c, err)
	}

	return noContent(c)
}

// PATCH /notifications/:id
func (h *NotificationHandler) Update(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	var body struct {
		IsRead *bool `json:"is_read"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.IsRead == nil {
		return badRequest(c, "is_read is required")
	}

	if err := h.svc.SetRead(c.Context(), id, claims.UserID, *body.IsRead); err != nil {
		return mapNotificationError(c, err)
	}

	n, err := h.svc.Get(c.Context(), id, claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, n)
}

// PATCH /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	n, err := h.svc.MarkAllRead(c.Context(), claims.UserID)
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{"updated": n})
}

// POST /notifications/bulk
func (h *NotificationHandler) BulkAction(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	var body struct {
		Action string   `json:"action"`
		IDs    []string `json:"notification_ids"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.IDs) == 0 {
		return badRequest(c, "notification_ids is required")
	}

	ids := make([]uuid.UUID, 0, len(body.IDs))
	for _, s := range body.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return badRequest(c, "invalid notification id: "+s)
		}
		ids = append(ids, id)
	}

	n, err := h.svc.BulkAction(c.Context(), claims.UserID, notification.BulkRequest{
		Action: body.Action,
		IDs:    ids,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{"affected": n})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	claims, claimsOK := pasetotoken.ClaimsFromFiber(c)
	if !claimsOK {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.Delete(c.Context(), id, claims.UserID); err != nil {
		return mapNotificationError(c, err)
	}

	return noContent(c)
}
