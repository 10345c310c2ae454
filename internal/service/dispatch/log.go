package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

func failure(msg string) model.DeliveryResult {
	return model.DeliveryResult{Success: false, Error: msg}
}

// containPanic turns a dispatcher panic into a failed DeliveryResult so one
// misbehaving channel never takes down the orchestrator.
func containPanic(logger *slog.Logger, c model.Channel, res *model.DeliveryResult) {
	if r := recover(); r != nil {
		logger.Error("dispatcher panic", "channel", c, "panic", r)
		*res = failure(fmt.Sprintf("panic: %v", r))
	}
}

// appendDeliveryLog records one delivery attempt. Log failures are reported
// but never fail the delivery itself.
func appendDeliveryLog(
	ctx context.Context,
	logs store.LogStore,
	logger *slog.Logger,
	n *model.Notification,
	c model.Channel,
	res model.DeliveryResult,
	extra map[string]any,
) {
	status := model.StatusDelivered
	if !res.Success {
		status = model.StatusFailed
	}

	data := make(map[string]any, len(res.Response)+len(extra))
	for k, v := range res.Response {
		data[k] = v
	}
	for k, v := range extra {
		data[k] = v
	}

	err := logs.Append(ctx, &model.NotificationLog{
		NotificationID: n.ID,
		Channel:        c,
		Status:         status,
		ErrorMessage:   res.Error,
		ResponseData:   data,
	})
	if err != nil {
		logger.Error("append delivery log",
			"notification_id", n.ID, "channel", c, "error", err)
	}
}
