package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store/storetest"
)

func newService(t *testing.T) (Service, *storetest.Memory) {
	t.Helper()
	mem := storetest.New()
	svc := New(mem.Notifications(), mem.Templates(), mem.LogStore(), nil)
	return svc, mem
}

func seedTemplate(t *testing.T, mem *storetest.Memory, name string, typ model.NotificationType, title, message string) {
	t.Helper()
	_, err := mem.UpsertByName(context.Background(), &model.NotificationTemplate{
		Name:            name,
		Type:            typ,
		TitleTemplate:   title,
		MessageTemplate: message,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()

	n, err := svc.Create(context.Background(), CreateRequest{
		UserID:  userID,
		Type:    "general",
		Title:   "Welcome",
		Message: "Your account is ready",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.Status != model.StatusPending {
		t.Errorf("new notification status = %s, want pending", n.Status)
	}
	if n.IsRead {
		t.Error("new notification should be unread")
	}
}

func TestCreate_InvalidType(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		UserID: uuid.New(),
		Type:   "carrier-pigeon",
		Title:  "x",
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("Create error = %v, want ErrInvalidType", err)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	svc, mem := newService(t)
	seedTemplate(t, mem, "medication_reminder", model.TypeMedication,
		"Medication Reminder", "Time to take {medication_name} ({time})")

	n, err := svc.CreateFromTemplate(context.Background(), TemplateRequest{
		UserID:       uuid.New(),
		TemplateName: "medication_reminder",
		Variables:    map[string]string{"medication_name": "Aspirin", "time": "08:00 AM"},
	})
	if err != nil {
		t.Fatalf("CreateFromTemplate failed: %v", err)
	}
	if n.Title != "Medication Reminder" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Message != "Time to take Aspirin (08:00 AM)" {
		t.Errorf("message = %q", n.Message)
	}
	if n.Type != model.TypeMedication {
		t.Errorf("type = %s, want medication", n.Type)
	}
}

func TestCreateFromTemplate_UnknownTemplate(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateFromTemplate(context.Background(), TemplateRequest{
		UserID:       uuid.New(),
		TemplateName: "no_such_template",
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("error = %v, want ErrTemplateNotFound", err)
	}
}

func TestCreateFromTemplate_MissingVariable(t *testing.T) {
	svc, mem := newService(t)
	seedTemplate(t, mem, "medication_reminder", model.TypeMedication,
		"Medication Reminder", "Time to take {medication_name} ({time})")

	_, err := svc.CreateFromTemplate(context.Background(), TemplateRequest{
		UserID:       uuid.New(),
		TemplateName: "medication_reminder",
		Variables:    map[string]string{"medication_name": "Aspirin"},
	})
	if err == nil {
		t.Fatal("expected render error for missing variable")
	}

	// Nothing may be persisted when rendering fails.
	notifs, lErr := svc.List(context.Background(), uuid.Nil, ListRequest{})
	if lErr != nil {
		t.Fatalf("List failed: %v", lErr)
	}
	if len(notifs) != 0 {
		t.Errorf("expected no notifications persisted, got %d", len(notifs))
	}
}

func TestMarkRead_OwnershipScoped(t *testing.T) {
	svc, _ := newService(t)
	owner := uuid.New()
	intruder := uuid.New()

	n, err := svc.Create(context.Background(), CreateRequest{
		UserID: owner, Type: "general", Title: "t", Message: "m",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID, intruder); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign MarkRead error = %v, want ErrNotFound", err)
	}

	got, err := svc.Get(context.Background(), n.ID, owner)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IsRead {
		t.Error("foreign MarkRead must not flip is_read")
	}

	if err := svc.MarkRead(context.Background(), n.ID, owner); err != nil {
		t.Fatalf("owner MarkRead failed: %v", err)
	}
	got, _ = svc.Get(context.Background(), n.ID, owner)
	if !got.IsRead {
		t.Error("owner MarkRead did not flip is_read")
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), CreateRequest{
			UserID: userID, Type: "general", Title: "t", Message: "m",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), CreateRequest{
		UserID: other, Type: "general", Title: "t", Message: "m",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := svc.MarkAllRead(context.Background(), userID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 3 {
		t.Errorf("MarkAllRead affected %d, want 3", n)
	}

	count, err := svc.UnreadCount(context.Background(), other)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("other user's unread = %d, want 1", count)
	}
}

func TestList_UnreadFilter(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()

	a, _ := svc.Create(context.Background(), CreateRequest{
		UserID: userID, Type: "general", Title: "a", Message: "m",
	})
	if _, err := svc.Create(context.Background(), CreateRequest{
		UserID: userID, Type: "sync", Title: "b", Message: "m",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.MarkRead(context.Background(), a.ID, userID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, err := svc.List(context.Background(), userID, ListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(unread) != 1 || unread[0].Title != "b" {
		t.Errorf("unread list = %v, want just b", unread)
	}

	byType, err := svc.List(context.Background(), userID, ListRequest{Type: "sync"})
	if err != nil {
		t.Fatalf("List by type failed: %v", err)
	}
	if len(byType) != 1 || byType[0].Type != model.TypeSync {
		t.Errorf("type filter returned %v", byType)
	}
}

func TestBulkAction(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n, err := svc.Create(context.Background(), CreateRequest{
			UserID: userID, Type: "general", Title: "t", Message: "m",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, n.ID)
	}

	n, err := svc.BulkAction(context.Background(), userID, BulkRequest{Action: ActionMarkRead, IDs: ids[:2]})
	if err != nil {
		t.Fatalf("BulkAction failed: %v", err)
	}
	if n != 2 {
		t.Errorf("mark_read affected %d, want 2", n)
	}

	n, err = svc.BulkAction(context.Background(), userID, BulkRequest{Action: ActionDelete, IDs: ids})
	if err != nil {
		t.Fatalf("BulkAction delete failed: %v", err)
	}
	if n != 3 {
		t.Errorf("delete affected %d, want 3", n)
	}

	if _, err := svc.BulkAction(context.Background(), userID, BulkRequest{Action: "explode"}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("unknown action error = %v, want ErrInvalidAction", err)
	}
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()

	for _, typ := range []string{"general", "general", "medication"} {
		if _, err := svc.Create(context.Background(), CreateRequest{
			UserID: userID, Type: typ, Title: "t", Message: "m",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	stats, err := svc.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Unread != 3 {
		t.Errorf("stats total/unread = %d/%d, want 3/3", stats.Total, stats.Unread)
	}
	if stats.ByType[model.TypeGeneral] != 2 || stats.ByType[model.TypeMedication] != 1 {
		t.Errorf("by type = %v", stats.ByType)
	}
	if len(stats.Recent) != 3 {
		t.Errorf("recent = %d, want 3", len(stats.Recent))
	}
}

func TestLogs_OwnershipScoped(t *testing.T) {
	svc, mem := newService(t)
	owner := uuid.New()

	n, err := svc.Create(context.Background(), CreateRequest{
		UserID: owner, Type: "general", Title: "t", Message: "m",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := mem.Append(context.Background(), &model.NotificationLog{
		NotificationID: n.ID,
		Channel:        model.ChannelPush,
		Status:         model.StatusDelivered,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	logs, err := svc.Logs(context.Background(), n.ID, owner)
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}

	if _, err := svc.Logs(context.Background(), n.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Logs error = %v, want ErrNotFound", err)
	}
}
