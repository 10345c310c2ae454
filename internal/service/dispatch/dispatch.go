// Package dispatch delivers notifications over their enabled channels and
// records every attempt.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// Dispatcher is one delivery channel. Send never panics and never returns an
// error: failures are contained in the DeliveryResult so sibling channels
// still run. Implementations write their own notification_logs rows.
type Dispatcher interface {
	Channel() model.Channel
	Send(ctx context.Context, n *model.Notification, rcpt *model.User) model.DeliveryResult
}

// Outcome summarizes one orchestrated dispatch.
type Outcome struct {
	Claimed bool
	Status  model.NotificationStatus
	Results map[model.Channel]model.DeliveryResult
}

type Service interface {
	// Dispatch claims n and runs its enabled channels. A notification that is
	// not in pending state is skipped (Claimed=false); this is the
	// at-most-once guard against concurrent dispatchers.
	Dispatch(ctx context.Context, n *model.Notification) (*Outcome, error)
	// DispatchDue claims and dispatches pending notifications whose schedule
	// has passed. Returns how many were dispatched.
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

type dispatchService struct {
	notifications store.NotificationStore
	prefs         store.PreferenceStore
	users         store.UserStore
	dispatchers   []Dispatcher
	batchSize     int
	chanTimeout   time.Duration
	logger        *slog.Logger
}

// New builds the orchestrator. Dispatchers run sequentially in the order
// given; the conventional order is push, email, sms.
func New(
	notifications store.NotificationStore,
	prefs store.PreferenceStore,
	users store.UserStore,
	dispatchers []Dispatcher,
	cfg config.DispatchConfig,
	logger *slog.Logger,
) Service {
	timeout := time.Duration(cfg.ChannelTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &dispatchService{
		notifications: notifications,
		prefs:         prefs,
		users:         users,
		dispatchers:   dispatchers,
		batchSize:     batch,
		chanTimeout:   timeout,
		logger:        logger,
	}
}

func (s *dispatchService) Dispatch(ctx context.Context, n *model.Notification) (*Outcome, error) {
	claimed, err := s.notifications.Claim(ctx, n.ID)
	if err != nil {
		return nil, fmt.Errorf("claim notification: %w", err)
	}
	if !claimed {
		s.logger.Debug("notification already claimed, skipping",
			"notification_id", n.ID, "status", n.Status)
		return &Outcome{Claimed: false, Status: n.Status}, nil
	}

	pref, err := s.prefs.EnsureDefault(ctx, n.UserID, n.Type)
	if err != nil {
		// Without preferences no channel can be chosen; the claim must not
		// leave the notification stuck in sending.
		if mErr := s.notifications.MarkFailed(ctx, n.ID); mErr != nil {
			s.logger.Error("mark failed after preference error",
				"notification_id", n.ID, "error", mErr)
		}
		return nil, fmt.Errorf("resolve preferences: %w", err)
	}

	// Email and SMS need an address; a missing directory entry only fails
	// the channels that require it.
	rcpt, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("recipient lookup failed",
			"notification_id", n.ID, "user_id", n.UserID, "error", err)
		rcpt = &model.User{ID: n.UserID}
	}

	outcome := &Outcome{
		Claimed: true,
		Results: make(map[model.Channel]model.DeliveryResult),
	}

	anySuccess := false
	for _, d := range s.dispatchers {
		if !channelEnabled(pref, d.Channel()) {
			continue
		}

		res := s.send(ctx, d, n, rcpt)
		outcome.Results[d.Channel()] = res
		observeDelivery(d.Channel(), res.Success)
		if res.Success {
			anySuccess = true
		} else {
			s.logger.Warn("channel delivery failed",
				"notification_id", n.ID,
				"channel", d.Channel(),
				"error", res.Error)
		}
	}

	if anySuccess {
		now := time.Now()
		if err := s.notifications.MarkSent(ctx, n.ID, now); err != nil {
			return nil, fmt.Errorf("mark sent: %w", err)
		}
		outcome.Status = model.StatusSent
	} else {
		if err := s.notifications.MarkFailed(ctx, n.ID); err != nil {
			return nil, fmt.Errorf("mark failed: %w", err)
		}
		outcome.Status = model.StatusFailed
	}
	observeDispatch(outcome.Status)

	s.logger.Info("notification dispatched",
		"notification_id", n.ID,
		"user_id", n.UserID,
		"type", n.Type,
		"status", outcome.Status,
		"channels", len(outcome.Results))

	return outcome, nil
}

func (s *dispatchService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.notifications.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due notifications: %w", err)
	}

	dispatched := 0
	for _, n := range due {
		outcome, err := s.Dispatch(ctx, n)
		if err != nil {
			s.logger.Error("dispatch failed", "notification_id", n.ID, "error", err)
			continue
		}
		if outcome.Claimed {
			dispatched++
		}
	}
	return dispatched, nil
}

// send runs one channel under its own deadline.
func (s *dispatchService) send(ctx context.Context, d Dispatcher, n *model.Notification, rcpt *model.User) model.DeliveryResult {
	cctx, cancel := context.WithTimeout(ctx, s.chanTimeout)
	defer cancel()
	return d.Send(cctx, n, rcpt)
}

func channelEnabled(p *model.NotificationPreference, c model.Channel) bool {
	switch c {
	case model.ChannelPush:
		return p.PushEnabled
	case model.ChannelEmail:
		return p.EmailEnabled
	case model.ChannelSMS:
		return p.SMSEnabled
	}
	return false
}
