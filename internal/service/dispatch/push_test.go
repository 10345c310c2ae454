package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store/storetest"
	"github.com/caretrack/caretrack_backend/pkg/push"
)

// newGateway fakes the push gateway: errByToken maps a token to the gateway
// error it should report; unknown tokens succeed.
func newGateway(t *testing.T, errByToken map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			To string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("gateway received bad request: %v", err)
		}

		result := map[string]any{"message_id": "msg-" + req.To}
		success, failure := 1, 0
		if gwErr, ok := errByToken[req.To]; ok {
			result = map[string]any{"error": gwErr}
			success, failure = 0, 1
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": success,
			"failure": failure,
			"results": []map[string]any{result},
		})
	}))
}

func newPushDispatcher(mem *storetest.Memory, gatewayURL string) Dispatcher {
	client := push.New(config.PushConfig{
		Enabled:    true,
		GatewayURL: gatewayURL,
		ServerKey:  "test-key",
	})
	return NewPushDispatcher(mem.Devices(), mem.LogStore(), client, testLogger())
}

func TestPushDispatcher_FanOut(t *testing.T) {
	gw := newGateway(t, nil)
	defer gw.Close()

	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	for _, tok := range []string{"tok-a", "tok-b"} {
		if _, err := mem.Register(context.Background(), userID, tok, model.DeviceIOS); err != nil {
			t.Fatalf("register token: %v", err)
		}
	}

	res := newPushDispatcher(mem, gw.URL).Send(context.Background(), n, nil)
	if !res.Success {
		t.Fatalf("Send failed: %s", res.Error)
	}
	if res.Response["tokens_delivered"] != 2 {
		t.Errorf("tokens_delivered = %v, want 2", res.Response["tokens_delivered"])
	}

	logs, err := mem.ListByNotification(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("ListByNotification failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log rows = %d, want one per token", len(logs))
	}
	for _, l := range logs {
		if l.Status != model.StatusDelivered {
			t.Errorf("log status = %s, want delivered", l.Status)
		}
		if l.Channel != model.ChannelPush {
			t.Errorf("log channel = %s, want push", l.Channel)
		}
	}
}

func TestPushDispatcher_NoActiveTokens(t *testing.T) {
	gatewayHit := false
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHit = true
	}))
	defer gw.Close()

	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	res := newPushDispatcher(mem, gw.URL).Send(context.Background(), n, nil)
	if res.Success {
		t.Error("Send succeeded without any device tokens")
	}
	if res.Error != "no active device tokens" {
		t.Errorf("error = %q, want %q", res.Error, "no active device tokens")
	}
	if gatewayHit {
		t.Error("gateway contacted despite zero tokens")
	}

	logs, _ := mem.ListByNotification(context.Background(), n.ID)
	if len(logs) != 0 {
		t.Errorf("expected no log rows without a delivery attempt, got %v", logs)
	}
}

func TestPushDispatcher_PartialSuccess(t *testing.T) {
	gw := newGateway(t, map[string]string{"tok-bad": "Unavailable"})
	defer gw.Close()

	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	for _, tok := range []string{"tok-good", "tok-bad"} {
		if _, err := mem.Register(context.Background(), userID, tok, model.DeviceAndroid); err != nil {
			t.Fatalf("register token: %v", err)
		}
	}

	res := newPushDispatcher(mem, gw.URL).Send(context.Background(), n, nil)
	if !res.Success {
		t.Fatalf("Send failed despite one deliverable token: %s", res.Error)
	}
	if res.Response["tokens_delivered"] != 1 {
		t.Errorf("tokens_delivered = %v, want 1", res.Response["tokens_delivered"])
	}

	logs, _ := mem.ListByNotification(context.Background(), n.ID)
	if len(logs) != 2 {
		t.Fatalf("log rows = %d, want 2", len(logs))
	}
}

func TestPushDispatcher_DeactivatesUnregisteredToken(t *testing.T) {
	gw := newGateway(t, map[string]string{"tok-stale": "NotRegistered"})
	defer gw.Close()

	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	if _, err := mem.Register(context.Background(), userID, "tok-stale", model.DeviceIOS); err != nil {
		t.Fatalf("register token: %v", err)
	}

	res := newPushDispatcher(mem, gw.URL).Send(context.Background(), n, nil)
	if res.Success {
		t.Error("Send succeeded with only an unregistered token")
	}

	active, err := mem.ListByUser(context.Background(), userID, true)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(active) != 0 {
		t.Error("unregistered token was not deactivated")
	}
}

func TestPushDispatcher_DisabledClient(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	if _, err := mem.Register(context.Background(), userID, "tok", model.DeviceWeb); err != nil {
		t.Fatalf("register token: %v", err)
	}

	client := push.New(config.PushConfig{Enabled: false})
	d := NewPushDispatcher(mem.Devices(), mem.LogStore(), client, testLogger())

	res := d.Send(context.Background(), n, nil)
	if res.Success {
		t.Error("disabled push client reported success")
	}
}
