package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
	"github.com/caretrack/caretrack_backend/pkg/push"
)

// pushDispatcher fans one notification out to every active device token the
// user has. The channel succeeds when at least one token is delivered.
type pushDispatcher struct {
	devices store.DeviceTokenStore
	logs    store.LogStore
	client  *push.Client
	logger  *slog.Logger
}

func NewPushDispatcher(devices store.DeviceTokenStore, logs store.LogStore, client *push.Client, logger *slog.Logger) Dispatcher {
	return &pushDispatcher{devices: devices, logs: logs, client: client, logger: logger}
}

func (d *pushDispatcher) Channel() model.Channel { return model.ChannelPush }

func (d *pushDispatcher) Send(ctx context.Context, n *model.Notification, _ *model.User) (res model.DeliveryResult) {
	defer containPanic(d.logger, d.Channel(), &res)

	tokens, err := d.devices.ListByUser(ctx, n.UserID, true)
	if err != nil {
		res = failure(fmt.Sprintf("list device tokens: %v", err))
		d.appendLog(ctx, n, res, nil)
		return res
	}
	if len(tokens) == 0 {
		// No gateway contact for token-less users.
		res = failure("no active device tokens")
		return res
	}

	delivered := 0
	for _, t := range tokens {
		tokenRes := d.sendToToken(ctx, n, t)
		d.appendLog(ctx, n, tokenRes, map[string]any{
			"token":       t.Token,
			"device_type": string(t.DeviceType),
		})
		if tokenRes.Success {
			delivered++
		}
	}

	if delivered == 0 {
		return model.DeliveryResult{
			Success: false,
			Error:   "all device tokens failed",
			Response: map[string]any{
				"tokens_total":     len(tokens),
				"tokens_delivered": 0,
			},
		}
	}
	return model.DeliveryResult{
		Success: true,
		Response: map[string]any{
			"tokens_total":     len(tokens),
			"tokens_delivered": delivered,
		},
	}
}

func (d *pushDispatcher) sendToToken(ctx context.Context, n *model.Notification, t *model.DeviceToken) model.DeliveryResult {
	receipt, err := d.client.Send(ctx, t.Token, n.Title, n.Message, n.Metadata)
	if err != nil {
		if errors.Is(err, push.ErrUnregistered) {
			// The gateway will never accept this token again.
			if dErr := d.devices.DeactivateToken(ctx, t.Token); dErr != nil {
				d.logger.Error("deactivate stale token", "error", dErr)
			}
		}
		return failure(err.Error())
	}

	if err := d.devices.TouchLastUsed(ctx, t.Token, time.Now()); err != nil {
		d.logger.Error("touch device token", "token", t.Token, "error", err)
	}
	return model.DeliveryResult{
		Success:  true,
		Response: map[string]any{"message_id": receipt.MessageID},
	}
}

func (d *pushDispatcher) appendLog(ctx context.Context, n *model.Notification, res model.DeliveryResult, extra map[string]any) {
	appendDeliveryLog(ctx, d.logs, d.logger, n, d.Channel(), res, extra)
}
