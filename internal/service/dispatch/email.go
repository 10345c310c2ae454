package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
	"github.com/caretrack/caretrack_backend/pkg/email"
)

type emailDispatcher struct {
	client *email.Client
	logs   store.LogStore
	logger *slog.Logger
}

func NewEmailDispatcher(client *email.Client, logs store.LogStore, logger *slog.Logger) Dispatcher {
	return &emailDispatcher{client: client, logs: logs, logger: logger}
}

func (d *emailDispatcher) Channel() model.Channel { return model.ChannelEmail }

func (d *emailDispatcher) Send(ctx context.Context, n *model.Notification, rcpt *model.User) (res model.DeliveryResult) {
	defer containPanic(d.logger, d.Channel(), &res)

	if rcpt == nil || rcpt.Email == "" {
		res = failure("recipient has no email address")
		d.appendLog(ctx, n, res, nil)
		return res
	}

	msg := email.BuildNotificationEmail(email.NotificationEmailData{
		Email:   rcpt.Email,
		Title:   n.Title,
		Message: n.Message,
	})

	if err := d.client.Send(ctx, msg); err != nil {
		res = failure(fmt.Sprintf("send email: %v", err))
		d.appendLog(ctx, n, res, map[string]any{"to": rcpt.Email})
		return res
	}

	res = model.DeliveryResult{
		Success:  true,
		Response: map[string]any{"to": rcpt.Email},
	}
	d.appendLog(ctx, n, res, nil)
	return res
}

func (d *emailDispatcher) appendLog(ctx context.Context, n *model.Notification, res model.DeliveryResult, extra map[string]any) {
	appendDeliveryLog(ctx, d.logs, d.logger, n, d.Channel(), res, extra)
}
