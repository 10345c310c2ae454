package dispatch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
	"github.com/caretrack/caretrack_backend/internal/store/storetest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDispatcher scripts one channel's outcome and records invocations.
type fakeDispatcher struct {
	channel model.Channel
	result  model.DeliveryResult
	calls   int
}

func (f *fakeDispatcher) Channel() model.Channel { return f.channel }

func (f *fakeDispatcher) Send(context.Context, *model.Notification, *model.User) model.DeliveryResult {
	f.calls++
	return f.result
}

func newOrchestrator(mem *storetest.Memory, dispatchers ...Dispatcher) Service {
	return New(
		mem.Notifications(),
		mem.Preferences(),
		mem.Users(),
		dispatchers,
		config.DispatchConfig{BatchSize: 10, ChannelTimeoutSeconds: 5},
		testLogger(),
	)
}

func seedNotification(t *testing.T, mem *storetest.Memory, userID uuid.UUID) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID:  userID,
		Type:    model.TypeGeneral,
		Title:   "t",
		Message: "m",
		Status:  model.StatusPending,
	}
	if err := mem.Create(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func enableChannels(t *testing.T, mem *storetest.Memory, userID uuid.UUID, push, email, sms bool) {
	t.Helper()
	_, err := mem.Upsert(context.Background(), userID, store.PreferencePatch{
		Type:         model.TypeGeneral,
		PushEnabled:  &push,
		EmailEnabled: &email,
		SMSEnabled:   &sms,
	})
	if err != nil {
		t.Fatalf("set preferences: %v", err)
	}
}

func TestDispatch_MarksSentOnAnySuccess(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)
	enableChannels(t, mem, userID, true, true, false)

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: false, Error: "gateway down"}}
	emailD := &fakeDispatcher{channel: model.ChannelEmail, result: model.DeliveryResult{Success: true}}
	smsD := &fakeDispatcher{channel: model.ChannelSMS, result: model.DeliveryResult{Success: true}}

	outcome, err := newOrchestrator(mem, pushD, emailD, smsD).Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !outcome.Claimed {
		t.Fatal("expected notification to be claimed")
	}
	if outcome.Status != model.StatusSent {
		t.Errorf("status = %s, want sent", outcome.Status)
	}
	if pushD.calls != 1 || emailD.calls != 1 {
		t.Errorf("push/email calls = %d/%d, want 1/1", pushD.calls, emailD.calls)
	}
	if smsD.calls != 0 {
		t.Error("sms dispatcher ran despite sms_enabled=false")
	}

	got, err := mem.Get(context.Background(), n.ID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != model.StatusSent {
		t.Errorf("stored status = %s, want sent", got.Status)
	}
	if got.SentAt == nil {
		t.Error("sent_at not set")
	}
}

func TestDispatch_MarksFailedWhenAllFail(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)
	enableChannels(t, mem, userID, true, true, false)

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: false, Error: "x"}}
	emailD := &fakeDispatcher{channel: model.ChannelEmail, result: model.DeliveryResult{Success: false, Error: "y"}}

	outcome, err := newOrchestrator(mem, pushD, emailD).Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if outcome.Status != model.StatusFailed {
		t.Errorf("status = %s, want failed", outcome.Status)
	}

	got, _ := mem.Get(context.Background(), n.ID, userID)
	if got.SentAt != nil {
		t.Error("failed notification must not have sent_at")
	}
}

func TestDispatch_ZeroEnabledChannels(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)
	enableChannels(t, mem, userID, false, false, false)

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: true}}

	outcome, err := newOrchestrator(mem, pushD).Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if outcome.Status != model.StatusFailed {
		t.Errorf("status = %s, want failed", outcome.Status)
	}
	if pushD.calls != 0 {
		t.Error("dispatcher ran with all channels disabled")
	}

	logs, err := mem.ListByNotification(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("ListByNotification failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected zero log rows, got %d", len(logs))
	}
}

func TestDispatch_AtMostOnce(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)
	enableChannels(t, mem, userID, true, false, false)

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: true}}
	svc := newOrchestrator(mem, pushD)

	first, err := svc.Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("first Dispatch failed: %v", err)
	}
	if !first.Claimed {
		t.Fatal("first dispatch did not claim")
	}

	second, err := svc.Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("second Dispatch failed: %v", err)
	}
	if second.Claimed {
		t.Error("second dispatch claimed an already-dispatched notification")
	}
	if pushD.calls != 1 {
		t.Errorf("push dispatcher ran %d times, want 1", pushD.calls)
	}
}

func TestDispatch_DefaultPreferencesApply(t *testing.T) {
	// No stored preferences: default push=on should route to push only.
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: true}}
	emailD := &fakeDispatcher{channel: model.ChannelEmail, result: model.DeliveryResult{Success: true}}
	smsD := &fakeDispatcher{channel: model.ChannelSMS, result: model.DeliveryResult{Success: true}}

	outcome, err := newOrchestrator(mem, pushD, emailD, smsD).Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if outcome.Status != model.StatusSent {
		t.Errorf("status = %s, want sent", outcome.Status)
	}
	if pushD.calls != 1 {
		t.Errorf("push calls = %d, want 1", pushD.calls)
	}
	if emailD.calls != 0 || smsD.calls != 0 {
		t.Errorf("email/sms ran on defaults: %d/%d", emailD.calls, smsD.calls)
	}
}

func TestDispatchDue(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := seedNotification(t, mem, userID)
	unscheduled := seedNotification(t, mem, userID)

	scheduled := &model.Notification{
		UserID: userID, Type: model.TypeGeneral, Title: "later", Message: "m",
		Status: model.StatusPending, ScheduledFor: &future,
	}
	if err := mem.Create(context.Background(), scheduled); err != nil {
		t.Fatalf("seed scheduled: %v", err)
	}
	overdue := &model.Notification{
		UserID: userID, Type: model.TypeGeneral, Title: "overdue", Message: "m",
		Status: model.StatusPending, ScheduledFor: &past,
	}
	if err := mem.Create(context.Background(), overdue); err != nil {
		t.Fatalf("seed overdue: %v", err)
	}

	pushD := &fakeDispatcher{channel: model.ChannelPush, result: model.DeliveryResult{Success: true}}
	dispatched, err := newOrchestrator(mem, pushD).DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue failed: %v", err)
	}
	if dispatched != 3 {
		t.Errorf("dispatched = %d, want 3 (due, unscheduled, overdue)", dispatched)
	}

	got, _ := mem.Get(context.Background(), scheduled.ID, userID)
	if got.Status != model.StatusPending {
		t.Errorf("future notification status = %s, want pending", got.Status)
	}
	for _, n := range []*model.Notification{due, unscheduled, overdue} {
		got, _ := mem.Get(context.Background(), n.ID, userID)
		if got.Status != model.StatusSent {
			t.Errorf("notification %s status = %s, want sent", got.Title, got.Status)
		}
	}
}

func TestDispatch_PanickingDispatcherIsContained(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)
	enableChannels(t, mem, userID, true, true, false)

	emailD := &fakeDispatcher{channel: model.ChannelEmail, result: model.DeliveryResult{Success: true}}

	outcome, err := newOrchestrator(mem, panicDispatcher{}, emailD).Dispatch(context.Background(), n)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if outcome.Status != model.StatusSent {
		t.Errorf("status = %s, want sent despite push panic", outcome.Status)
	}
	res := outcome.Results[model.ChannelPush]
	if res.Success {
		t.Error("panicking channel reported success")
	}
}

type panicDispatcher struct{}

func (panicDispatcher) Channel() model.Channel { return model.ChannelPush }

func (p panicDispatcher) Send(ctx context.Context, n *model.Notification, u *model.User) (res model.DeliveryResult) {
	defer containPanic(testLogger(), p.Channel(), &res)
	panic("gateway client blew up")
}
