package device

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/store/storetest"
)

func newService(t *testing.T) Service {
	t.Helper()
	return New(storetest.New().Devices())
}

func TestRegister(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	d, err := svc.Register(context.Background(), RegisterRequest{
		UserID:     userID,
		Token:      "tok-1",
		DeviceType: "ios",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !d.IsActive {
		t.Error("new registration should be active")
	}
	if d.UserID != userID {
		t.Errorf("device user = %s, want %s", d.UserID, userID)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{
			name:    "empty token",
			req:     RegisterRequest{UserID: uuid.New(), Token: "", DeviceType: "ios"},
			wantErr: ErrTokenRequired,
		},
		{
			name:    "unknown device type",
			req:     RegisterRequest{UserID: uuid.New(), Token: "tok", DeviceType: "fridge"},
			wantErr: ErrInvalidDeviceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_ReassignsExistingToken(t *testing.T) {
	svc := newService(t)
	first := uuid.New()
	second := uuid.New()

	a, err := svc.Register(context.Background(), RegisterRequest{
		UserID: first, Token: "shared-token", DeviceType: "android",
	})
	if err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	b, err := svc.Register(context.Background(), RegisterRequest{
		UserID: second, Token: "shared-token", DeviceType: "ios",
	})
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if b.ID != a.ID {
		t.Error("re-registration created a second row for the same token")
	}
	if b.UserID != second {
		t.Errorf("token owner = %s, want %s", b.UserID, second)
	}
	if !b.IsActive {
		t.Error("re-registered token should be active")
	}

	// The previous owner must no longer see the token.
	old, err := svc.List(context.Background(), first)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("previous owner still holds %d devices", len(old))
	}
}

func TestGet(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		UserID: userID, Token: "tok", DeviceType: "web",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	d, err := svc.Get(context.Background(), userID, "tok")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if d.Token != "tok" {
		t.Errorf("token = %q, want %q", d.Token, "tok")
	}

	// Deactivated tokens stay visible on the detail view.
	if err := svc.Deactivate(context.Background(), userID, "tok"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), userID, "tok"); err != nil {
		t.Errorf("Get after deactivate = %v, want nil", err)
	}

	// Another user's lookup misses.
	if _, err := svc.Get(context.Background(), uuid.New(), "tok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Get error = %v, want ErrNotFound", err)
	}
}

func TestDeactivate(t *testing.T) {
	svc := newService(t)
	userID := uuid.New()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		UserID: userID, Token: "tok", DeviceType: "web",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Deactivate(context.Background(), userID, "tok"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	active, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated token still listed as active")
	}
}

func TestDeactivate_ForeignToken(t *testing.T) {
	svc := newService(t)
	owner := uuid.New()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		UserID: owner, Token: "tok", DeviceType: "web",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Deactivate(context.Background(), uuid.New(), "tok"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Deactivate error = %v, want ErrNotFound", err)
	}
}
