package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
	"github.com/caretrack/caretrack_backend/pkg/sms"
)

type smsDispatcher struct {
	client *sms.Client
	logs   store.LogStore
	logger *slog.Logger
}

func NewSMSDispatcher(client *sms.Client, logs store.LogStore, logger *slog.Logger) Dispatcher {
	return &smsDispatcher{client: client, logs: logs, logger: logger}
}

func (d *smsDispatcher) Channel() model.Channel { return model.ChannelSMS }

func (d *smsDispatcher) Send(ctx context.Context, n *model.Notification, rcpt *model.User) (res model.DeliveryResult) {
	defer containPanic(d.logger, d.Channel(), &res)

	if rcpt == nil || rcpt.Phone == "" {
		res = failure("recipient has no phone number")
		d.appendLog(ctx, n, res, nil)
		return res
	}

	text := n.Title + "\n" + n.Message
	if err := d.client.SendMessage(ctx, rcpt.Phone, text); err != nil {
		res = failure(fmt.Sprintf("send sms: %v", err))
		d.appendLog(ctx, n, res, map[string]any{"to": rcpt.Phone})
		return res
	}

	res = model.DeliveryResult{
		Success:  true,
		Response: map[string]any{"to": rcpt.Phone},
	}
	d.appendLog(ctx, n, res, nil)
	return res
}

func (d *smsDispatcher) appendLog(ctx context.Context, n *model.Notification, res model.DeliveryResult, extra map[string]any) {
	appendDeliveryLog(ctx, d.logs, d.logger, n, d.Channel(), res, extra)
}
