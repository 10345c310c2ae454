package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store/storetest"
)

func newService(t *testing.T) Service {
	t.Helper()
	return New(storetest.New().Preferences())
}

func boolPtr(b bool) *bool { return &b }

func TestResolve_Defaults(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	for _, typ := range model.Types() {
		p, err := svc.Resolve(context.Background(), userID, typ)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", typ, err)
		}
		if !p.PushEnabled {
			t.Errorf("%s: push default = false, want true", typ)
		}
		if p.EmailEnabled {
			t.Errorf("%s: email default = true, want false", typ)
		}
		if p.SMSEnabled {
			t.Errorf("%s: sms default = true, want false", typ)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	first, err := svc.Resolve(context.Background(), userID, model.TypeMedication)
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	// Customize, then resolve again: the stored row must win over defaults.
	if _, err := svc.Update(context.Background(), userID, UpdateRequest{
		Type:         "medication",
		EmailEnabled: boolPtr(true),
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	second, err := svc.Resolve(context.Background(), userID, model.TypeMedication)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("Resolve created a second row for the same (user, type)")
	}
	if !second.EmailEnabled {
		t.Error("Resolve returned defaults instead of the stored row")
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	if _, err := svc.Update(context.Background(), userID, UpdateRequest{
		Type:        "sync",
		PushEnabled: boolPtr(false),
	}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}

	// A patch that only touches sms must not reset push.
	p, err := svc.Update(context.Background(), userID, UpdateRequest{
		Type:       "sync",
		SMSEnabled: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if p.PushEnabled {
		t.Error("partial patch reset push_enabled to default")
	}
	if !p.SMSEnabled {
		t.Error("partial patch did not apply sms_enabled")
	}
}

func TestUpdate_InvalidType(t *testing.T) {
	svc := newService(t)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateRequest{Type: "smoke-signal"})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("error = %v, want ErrInvalidType", err)
	}
}

func TestBulkUpdate(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	prefs, err := svc.BulkUpdate(context.Background(), userID, []UpdateRequest{
		{Type: "medication", EmailEnabled: boolPtr(true)},
		{Type: "general", PushEnabled: boolPtr(false)},
	})
	if err != nil {
		t.Fatalf("BulkUpdate failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("BulkUpdate returned %d prefs, want 2", len(prefs))
	}
}

func TestBulkUpdate_RejectsBeforeApplying(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	_, err := svc.BulkUpdate(context.Background(), userID, []UpdateRequest{
		{Type: "medication", EmailEnabled: boolPtr(true)},
		{Type: "bogus"},
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("error = %v, want ErrInvalidType", err)
	}

	// The valid entry must not have been applied.
	p, err := svc.Resolve(context.Background(), userID, model.TypeMedication)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.EmailEnabled {
		t.Error("rejected batch partially applied")
	}
}

func TestSeedDefaults(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	if err := svc.SeedDefaults(context.Background(), userID); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	prefs, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(prefs) != len(model.Types()) {
		t.Errorf("seeded %d prefs, want %d", len(prefs), len(model.Types()))
	}
}

func TestList_MaterializesAllTypes(t *testing.T) {
	svc := newService(t)

	prefs, err := svc.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(prefs) != len(model.Types()) {
		t.Errorf("List returned %d prefs, want %d", len(prefs), len(model.Types()))
	}
}
