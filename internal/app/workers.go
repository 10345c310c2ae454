package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/service/dispatch"
	"github.com/caretrack/caretrack_backend/internal/service/notification"
	"github.com/caretrack/caretrack_backend/internal/service/preference"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc          fx.Lifecycle
	NC          *nats.Conn
	Users       store.UserStore
	NotifSvc    notification.Service
	PrefSvc     preference.Service
	DispatchSvc dispatch.Service
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startMedicationWorker(p.NC, p.NotifSvc, p.DispatchSvc)
			startArticleWorker(p.NC, p.NotifSvc, p.DispatchSvc)
			startSyncWorker(p.NC, p.NotifSvc, p.DispatchSvc)
			startUserWorker(p.NC, p.Users, p.PrefSvc)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// userIDFromSubject extracts the trailing wildcard token of a subject.
func userIDFromSubject(subject string, want int) (uuid.UUID, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) <= want {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[want])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// createAndDispatch renders a template into a notification and delivers it
// immediately. Worker events are fire-and-forget: failures are logged, never
// retried here.
func createAndDispatch(
	worker string,
	notifSvc notification.Service,
	dispatchSvc dispatch.Service,
	req notification.TemplateRequest,
) {
	ctx := context.Background()

	n, err := notifSvc.CreateFromTemplate(ctx, req)
	if err != nil {
		slog.Warn(worker+": create notification failed",
			"user_id", req.UserID, "template", req.TemplateName, "err", err)
		return
	}

	if _, err := dispatchSvc.Dispatch(ctx, n); err != nil {
		slog.Warn(worker+": dispatch failed", "notification_id", n.ID, "err", err)
	}
}

// ---------------------------------------------------------------------------
// medication_worker
// ---------------------------------------------------------------------------

func startMedicationWorker(nc *nats.Conn, notifSvc notification.Service, dispatchSvc dispatch.Service) {
	_, err := nc.Subscribe("caretrack.medication.due.*", func(msg *nats.Msg) {
		userID, ok := userIDFromSubject(msg.Subject, 3)
		if !ok {
			return
		}

		var payload struct {
			MedicationName string `json:"medication_name"`
			Time           string `json:"time"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			slog.Warn("medication_worker: bad payload", "err", err)
			return
		}

		createAndDispatch("medication_worker", notifSvc, dispatchSvc, notification.TemplateRequest{
			UserID:       userID,
			TemplateName: "medication_reminder",
			Variables: map[string]string{
				"medication_name": payload.MedicationName,
				"time":            payload.Time,
			},
			Metadata: map[string]any{"source": "medication_schedule"},
		})
	})
	if err != nil {
		slog.Error("medication_worker: subscribe medication.due failed", "err", err)
	}

	slog.Info("medication_worker: started")
}

// ---------------------------------------------------------------------------
// article_worker
// ---------------------------------------------------------------------------

func startArticleWorker(nc *nats.Conn, notifSvc notification.Service, dispatchSvc dispatch.Service) {
	_, err := nc.Subscribe("caretrack.article.published", func(msg *nats.Msg) {
		var payload struct {
			UserID       uuid.UUID `json:"user_id"`
			ArticleTitle string    `json:"article_title"`
			ArticleID    string    `json:"article_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			slog.Warn("article_worker: bad payload", "err", err)
			return
		}
		if payload.UserID == uuid.Nil {
			return
		}

		createAndDispatch("article_worker", notifSvc, dispatchSvc, notification.TemplateRequest{
			UserID:       payload.UserID,
			TemplateName: "new_health_article",
			Variables:    map[string]string{"article_title": payload.ArticleTitle},
			Metadata:     map[string]any{"article_id": payload.ArticleID},
		})
	})
	if err != nil {
		slog.Error("article_worker: subscribe article.published failed", "err", err)
	}

	slog.Info("article_worker: started")
}

// ---------------------------------------------------------------------------
// sync_worker
// ---------------------------------------------------------------------------

func startSyncWorker(nc *nats.Conn, notifSvc notification.Service, dispatchSvc dispatch.Service) {
	_, err := nc.Subscribe("caretrack.health.sync.completed.*", func(msg *nats.Msg) {
		userID, ok := userIDFromSubject(msg.Subject, 4)
		if !ok {
			return
		}

		var payload struct {
			DeviceName string `json:"device_name"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			slog.Warn("sync_worker: bad payload", "err", err)
			return
		}

		createAndDispatch("sync_worker", notifSvc, dispatchSvc, notification.TemplateRequest{
			UserID:       userID,
			TemplateName: "sync_complete",
			Variables:    map[string]string{"device_name": payload.DeviceName},
			Metadata:     map[string]any{"source": "health_sync"},
		})
	})
	if err != nil {
		slog.Error("sync_worker: subscribe health.sync.completed failed", "err", err)
	}

	slog.Info("sync_worker: started")
}

// ---------------------------------------------------------------------------
// user_worker (account provisioning)
// ---------------------------------------------------------------------------

func startUserWorker(nc *nats.Conn, users store.UserStore, prefSvc preference.Service) {
	_, err := nc.Subscribe("caretrack.user.created.*", func(msg *nats.Msg) {
		userID, ok := userIDFromSubject(msg.Subject, 3)
		if !ok {
			return
		}

		var payload struct {
			Email    string `json:"email"`
			Phone    string `json:"phone"`
			FullName string `json:"full_name"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			slog.Warn("user_worker: bad payload", "err", err)
			return
		}

		ctx := context.Background()

		if err := users.Upsert(ctx, &model.User{
			ID:       userID,
			Email:    payload.Email,
			Phone:    payload.Phone,
			FullName: payload.FullName,
		}); err != nil {
			slog.Warn("user_worker: upsert user failed", "user_id", userID, "err", err)
			return
		}

		if err := prefSvc.SeedDefaults(ctx, userID); err != nil {
			slog.Warn("user_worker: seed preferences failed", "user_id", userID, "err", err)
		}
	})
	if err != nil {
		slog.Error("user_worker: subscribe user.created failed", "err", err)
	}

	slog.Info("user_worker: started")
}
