package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/service/device"
	"github.com/caretrack/caretrack_backend/internal/service/dispatch"
	"github.com/caretrack/caretrack_backend/internal/service/notification"
	"github.com/caretrack/caretrack_backend/internal/service/preference"
	"github.com/caretrack/caretrack_backend/internal/store"
	"github.com/caretrack/caretrack_backend/pkg/email"
	pasetotoken "github.com/caretrack/caretrack_backend/pkg/paseto"
	"github.com/caretrack/caretrack_backend/pkg/push"
	"github.com/caretrack/caretrack_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideNotificationService,
		ProvidePreferenceService,
		ProvideDeviceService,
		ProvideDispatchService,
		ProvidePasetoManager,
	),
)

func ProvideNotificationService(
	notifications store.NotificationStore,
	templates store.TemplateStore,
	logs store.LogStore,
	rdb *redis.Client,
) notification.Service {
	return notification.New(notifications, templates, logs, rdb)
}

func ProvidePreferenceService(prefs store.PreferenceStore) preference.Service {
	return preference.New(prefs)
}

func ProvideDeviceService(devices store.DeviceTokenStore) device.Service {
	return device.New(devices)
}

func ProvideDispatchService(
	notifications store.NotificationStore,
	prefs store.PreferenceStore,
	users store.UserStore,
	devices store.DeviceTokenStore,
	logs store.LogStore,
	pushCli *push.Client,
	emailCli *email.Client,
	smsCli *sms.Client,
	cfg *config.Config,
) dispatch.Service {
	logger := slog.Default()
	dispatchers := []dispatch.Dispatcher{
		dispatch.NewPushDispatcher(devices, logs, pushCli, logger),
		dispatch.NewEmailDispatcher(emailCli, logs, logger),
		dispatch.NewSMSDispatcher(smsCli, logs, logger),
	}
	return dispatch.New(notifications, prefs, users, dispatchers, cfg.Dispatch, logger)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
