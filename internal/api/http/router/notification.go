package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/caretrack/caretrack_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	ph *handler.PreferenceHandler,
	dh *handler.DeviceHandler,
	th *handler.TemplateHandler,
	authRequired fiber.Handler,
) {
	notifs := api.Group("/notifications", authRequired)

	// Static paths first so they never shadow the :id routes.
	notifs.Get("/", nh.List)
	notifs.Post("/", nh.Create)
	notifs.Get("/stats", nh.Stats)
	notifs.Get("/unread-count", nh.UnreadCount)
	notifs.Patch("/read-all", nh.MarkAllRead)
	notifs.Post("/bulk", nh.BulkAction)

	notifs.Get("/preferences", ph.List)
	notifs.Put("/preferences", ph.BulkUpdate)
	notifs.Put("/preferences/:type", ph.Update)

	notifs.Post("/devices", dh.Register)
	notifs.Get("/devices", dh.List)
	notifs.Get("/devices/:token", dh.Get)
	notifs.Delete("/devices/:token", dh.Deactivate)

	notifs.Get("/templates", th.List)

	notifs.Get("/:id", nh.Get)
	notifs.Get("/:id/logs", nh.Logs)
	notifs.Patch("/:id/read", nh.MarkRead)
	notifs.Patch("/:id", nh.Update)
	notifs.Delete("/:id", nh.Delete)
}
