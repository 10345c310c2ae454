// Package postgres implements the store interfaces on PostgreSQL via
// database/sql and lib/pq.
package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/caretrack/caretrack_backend/internal/store"
)

// Store bundles all repositories over one connection pool.
type Store struct {
	Notifications store.NotificationStore
	Preferences   store.PreferenceStore
	Devices       store.DeviceTokenStore
	Templates     store.TemplateStore
	Logs          store.LogStore
	Users         store.UserStore

	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{
		Notifications: &notificationRepo{db: db},
		Preferences:   &preferenceRepo{db: db},
		Devices:       &deviceTokenRepo{db: db},
		Templates:     &templateRepo{db: db},
		Logs:          &logRepo{db: db},
		Users:         &userRepo{db: db},
		db:            db,
	}
}

func (s *Store) DB() *sql.DB { return s.db }

// marshalJSON encodes a metadata map for a JSONB column; nil maps become
// an empty object so columns stay NOT NULL.
func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func unmarshalJSON(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
