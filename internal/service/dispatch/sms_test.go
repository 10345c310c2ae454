package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store/storetest"
	"github.com/caretrack/caretrack_backend/pkg/sms"
)

func TestSMSDispatcher_NoPhoneNumber(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	client, err := sms.NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	d := NewSMSDispatcher(client, mem.LogStore(), testLogger())

	res := d.Send(context.Background(), n, &model.User{ID: userID})
	if res.Success {
		t.Error("Send succeeded without a phone number")
	}
	if res.Error != "recipient has no phone number" {
		t.Errorf("error = %q, want missing-phone failure", res.Error)
	}
}

func TestSMSDispatcher_DisabledClient(t *testing.T) {
	mem := storetest.New()
	userID := uuid.New()
	n := seedNotification(t, mem, userID)

	client, err := sms.NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	d := NewSMSDispatcher(client, mem.LogStore(), testLogger())

	res := d.Send(context.Background(), n, &model.User{ID: userID, Phone: "+989121234567"})
	if res.Success {
		t.Error("disabled sms client reported success")
	}
	if !strings.Contains(res.Error, "disabled") {
		t.Errorf("error = %q, want disabled-client failure", res.Error)
	}

	logs, err := mem.ListByNotification(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("ListByNotification failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("log rows = %d, want 1", len(logs))
	}
	if logs[0].Status != model.StatusFailed {
		t.Errorf("log status = %s, want failed", logs[0].Status)
	}
	if logs[0].Channel != model.ChannelSMS {
		t.Errorf("log channel = %s, want sms", logs[0].Channel)
	}
}
