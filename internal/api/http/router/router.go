package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/api/http/handler"
	"github.com/caretrack/caretrack_backend/internal/api/http/middleware"
	"github.com/caretrack/caretrack_backend/internal/service/device"
	"github.com/caretrack/caretrack_backend/internal/service/notification"
	"github.com/caretrack/caretrack_backend/internal/service/preference"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	NotificationSvc notification.Service
	PreferenceSvc   preference.Service
	DeviceSvc       device.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)

	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	preferenceH := handler.NewPreferenceHandler(r.p.PreferenceSvc)
	deviceH := handler.NewDeviceHandler(r.p.DeviceSvc)
	templateH := handler.NewTemplateHandler(r.p.NotificationSvc)

	api := app.Group("/api/v1")

	r.registerNotificationRoutes(api, notificationH, preferenceH, deviceH, templateH, authRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
