// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

// Memory implements every store interface in process memory.
type Memory struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
	preferences   map[string]*model.NotificationPreference
	devices       map[string]*model.DeviceToken
	templates     map[string]*model.NotificationTemplate
	logs          []*model.NotificationLog
	users         map[uuid.UUID]*model.User
}

func New() *Memory {
	return &Memory{
		notifications: make(map[uuid.UUID]*model.Notification),
		preferences:   make(map[string]*model.NotificationPreference),
		devices:       make(map[string]*model.DeviceToken),
		templates:     make(map[string]*model.NotificationTemplate),
		users:         make(map[uuid.UUID]*model.User),
	}
}

func prefKey(userID uuid.UUID, t model.NotificationType) string {
	return userID.String() + "/" + string(t)
}

// --- NotificationStore -----------------------------------------------------

func (m *Memory) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Status == "" {
		n.Status = model.StatusPending
	}
	cp := *n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *Memory) List(_ context.Context, userID uuid.UUID, f store.ListFilter) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		if f.Type != nil && n.Type != *f.Type {
			continue
		}
		if f.DateFrom != nil && n.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && n.CreatedAt.After(*f.DateTo) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) Stats(ctx context.Context, userID uuid.UUID, recent int) (*store.NotificationStats, error) {
	m.mu.Lock()
	stats := &store.NotificationStats{ByType: make(map[model.NotificationType]int)}
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		stats.Total++
		if !n.IsRead {
			stats.Unread++
		}
		stats.ByType[n.Type]++
	}
	m.mu.Unlock()

	if recent > 0 {
		var err error
		stats.Recent, err = m.List(ctx, userID, store.ListFilter{Limit: recent})
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (m *Memory) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.notifications {
		if v.UserID == userID && !v.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *Memory) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	return true, nil
}

func (m *Memory) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *Memory) SetRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID, read bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, id := range ids {
		if n, ok := m.notifications[id]; ok && n.UserID == userID {
			n.IsRead = read
			count++
		}
	}
	return count, nil
}

func (m *Memory) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(m.notifications, id)
	return true, nil
}

func (m *Memory) DeleteMany(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, id := range ids {
		if n, ok := m.notifications[id]; ok && n.UserID == userID {
			delete(m.notifications, id)
			count++
		}
	}
	return count, nil
}

func (m *Memory) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
		}
	}
	return nil
}

func (m *Memory) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.Status != model.StatusPending {
		return false, nil
	}
	n.Status = model.StatusSending
	return true, nil
}

func (m *Memory) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Status = model.StatusSent
		n.SentAt = &at
	}
	return nil
}

func (m *Memory) MarkFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Status = model.StatusFailed
	}
	return nil
}

func (m *Memory) ListDue(_ context.Context, now time.Time, limit int) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.Status != model.StatusPending {
			continue
		}
		if n.ScheduledFor != nil && n.ScheduledFor.After(now) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- PreferenceStore -------------------------------------------------------

func (m *Memory) EnsureDefault(_ context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := prefKey(userID, t)
	if p, ok := m.preferences[key]; ok {
		cp := *p
		return &cp, nil
	}
	def := model.DefaultPreference(userID, t)
	def.ID = uuid.New()
	def.CreatedAt = time.Now()
	def.UpdatedAt = def.CreatedAt
	m.preferences[key] = &def
	cp := def
	return &cp, nil
}

func (m *Memory) ListPreferences(_ context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.NotificationPreference
	for _, p := range m.preferences {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (m *Memory) Upsert(_ context.Context, userID uuid.UUID, patch store.PreferencePatch) (*model.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := prefKey(userID, patch.Type)
	p, ok := m.preferences[key]
	if !ok {
		def := model.DefaultPreference(userID, patch.Type)
		def.ID = uuid.New()
		def.CreatedAt = time.Now()
		p = &def
		m.preferences[key] = p
	}
	if patch.PushEnabled != nil {
		p.PushEnabled = *patch.PushEnabled
	}
	if patch.EmailEnabled != nil {
		p.EmailEnabled = *patch.EmailEnabled
	}
	if patch.SMSEnabled != nil {
		p.SMSEnabled = *patch.SMSEnabled
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *Memory) DeleteAllPreferences(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, p := range m.preferences {
		if p.UserID == userID {
			delete(m.preferences, key)
		}
	}
	return nil
}

// --- DeviceTokenStore ------------------------------------------------------

func (m *Memory) Register(_ context.Context, userID uuid.UUID, token string, dt model.DeviceType) (*model.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[token]
	if !ok {
		d = &model.DeviceToken{
			ID:        uuid.New(),
			Token:     token,
			CreatedAt: time.Now(),
		}
		m.devices[token] = d
	}
	d.UserID = userID
	d.DeviceType = dt
	d.IsActive = true
	d.LastUsed = time.Now()
	cp := *d
	return &cp, nil
}

func (m *Memory) ListByUser(_ context.Context, userID uuid.UUID, activeOnly bool) ([]*model.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.DeviceToken
	for _, d := range m.devices {
		if d.UserID != userID {
			continue
		}
		if activeOnly && !d.IsActive {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (m *Memory) GetByToken(_ context.Context, userID uuid.UUID, token string) (*model.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[token]
	if !ok || d.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *Memory) Deactivate(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[token]
	if !ok || d.UserID != userID {
		return false, nil
	}
	d.IsActive = false
	return true, nil
}

func (m *Memory) DeactivateToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[token]; ok {
		d.IsActive = false
	}
	return nil
}

func (m *Memory) TouchLastUsed(_ context.Context, token string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[token]; ok {
		d.LastUsed = at
	}
	return nil
}

// --- TemplateStore ---------------------------------------------------------

func (m *Memory) GetActiveByName(_ context.Context, name string) (*model.NotificationTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[name]
	if !ok || !t.IsActive {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) ListActive(_ context.Context) ([]*model.NotificationTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.NotificationTemplate
	for _, t := range m.templates {
		if t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) UpsertByName(_ context.Context, t *model.NotificationTemplate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.templates[t.Name]
	cp := *t
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.templates[t.Name] = &cp
	return !existed, nil
}

// --- LogStore ----------------------------------------------------------------

func (m *Memory) Append(_ context.Context, l *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.AttemptedAt.IsZero() {
		cp.AttemptedAt = time.Now()
	}
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *Memory) ListByNotification(_ context.Context, notificationID uuid.UUID) ([]*model.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.NotificationLog
	for _, l := range m.logs {
		if l.NotificationID == notificationID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- UserStore ---------------------------------------------------------------

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UpsertUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.users[cp.ID] = &cp
	return nil
}

// --- Interface views ---------------------------------------------------------
//
// Method names collide across the store interfaces (List, Get), so Memory
// exposes each one through a thin view.

func (m *Memory) Notifications() store.NotificationStore { return m }
func (m *Memory) Devices() store.DeviceTokenStore        { return m }
func (m *Memory) Templates() store.TemplateStore         { return m }
func (m *Memory) LogStore() store.LogStore               { return m }

func (m *Memory) Preferences() store.PreferenceStore { return prefView{m} }
func (m *Memory) Users() store.UserStore             { return userView{m} }

type prefView struct{ m *Memory }

func (v prefView) EnsureDefault(ctx context.Context, userID uuid.UUID, t model.NotificationType) (*model.NotificationPreference, error) {
	return v.m.EnsureDefault(ctx, userID, t)
}

func (v prefView) List(ctx context.Context, userID uuid.UUID) ([]*model.NotificationPreference, error) {
	return v.m.ListPreferences(ctx, userID)
}

func (v prefView) Upsert(ctx context.Context, userID uuid.UUID, p store.PreferencePatch) (*model.NotificationPreference, error) {
	return v.m.Upsert(ctx, userID, p)
}

func (v prefView) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return v.m.DeleteAllPreferences(ctx, userID)
}

type userView struct{ m *Memory }

func (v userView) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return v.m.GetUser(ctx, id)
}

func (v userView) Upsert(ctx context.Context, u *model.User) error {
	return v.m.UpsertUser(ctx, u)
}
