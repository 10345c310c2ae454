package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType determines default routing and which template applies.
type NotificationType string

const (
	TypeMedication NotificationType = "medication"
	TypeHealthTip  NotificationType = "health-tip"
	TypeSync       NotificationType = "sync"
	TypeGeneral    NotificationType = "general"
)

// Types lists all notification types in a stable order.
func Types() []NotificationType {
	return []NotificationType{TypeMedication, TypeHealthTip, TypeSync, TypeGeneral}
}

// ValidType reports whether s is a known notification type.
func ValidType(s string) bool {
	switch NotificationType(s) {
	case TypeMedication, TypeHealthTip, TypeSync, TypeGeneral:
		return true
	}
	return false
}

// NotificationStatus is the lifecycle state of a notification.
// A notification is claimed (pending -> sending) before any channel is
// attempted so concurrent dispatchers cannot double-send it.
type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSending NotificationStatus = "sending"
	StatusSent    NotificationStatus = "sent"
	// StatusDelivered is used for per-channel log entries only; a
	// notification itself terminates at sent or failed.
	StatusDelivered NotificationStatus = "delivered"
	StatusFailed    NotificationStatus = "failed"
)

// Channel is a delivery mechanism.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// DeviceType is the platform a device token belongs to.
type DeviceType string

const (
	DeviceIOS     DeviceType = "ios"
	DeviceAndroid DeviceType = "android"
	DeviceWeb     DeviceType = "web"
)

// ValidDeviceType reports whether s is a known device type.
func ValidDeviceType(s string) bool {
	switch DeviceType(s) {
	case DeviceIOS, DeviceAndroid, DeviceWeb:
		return true
	}
	return false
}

// Notification is one unit of user-facing communication.
type Notification struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"user_id"`
	Type         NotificationType   `json:"type"`
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	IsRead       bool               `json:"is_read"`
	Status       NotificationStatus `json:"status"`
	ScheduledFor *time.Time         `json:"scheduled_for,omitempty"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NotificationPreference holds the per-(user, type) channel toggles.
type NotificationPreference struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Type         NotificationType `json:"notification_type"`
	PushEnabled  bool             `json:"push_enabled"`
	EmailEnabled bool             `json:"email_enabled"`
	SMSEnabled   bool             `json:"sms_enabled"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// DefaultPreference returns the default-on-push policy for a never-before-seen
// (user, type) pair.
func DefaultPreference(userID uuid.UUID, t NotificationType) NotificationPreference {
	return NotificationPreference{
		UserID:       userID,
		Type:         t,
		PushEnabled:  true,
		EmailEnabled: false,
		SMSEnabled:   false,
	}
}

// DeviceToken is a push-notification destination registered by a client app.
type DeviceToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Token      string     `json:"token"`
	DeviceType DeviceType `json:"device_type"`
	IsActive   bool       `json:"is_active"`
	LastUsed   time.Time  `json:"last_used"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NotificationTemplate is a named, reusable message pattern with
// {placeholder} substitution in both title and message.
type NotificationTemplate struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Type            NotificationType `json:"notification_type"`
	TitleTemplate   string           `json:"title_template"`
	MessageTemplate string           `json:"message_template"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NotificationLog is an immutable record of one delivery attempt for one
// notification on one channel. Status is delivered or failed, never pending.
type NotificationLog struct {
	ID             uuid.UUID          `json:"id"`
	NotificationID uuid.UUID          `json:"notification_id"`
	Channel        Channel            `json:"delivery_method"`
	Status         NotificationStatus `json:"status"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	ResponseData   map[string]any     `json:"response_data,omitempty"`
	AttemptedAt    time.Time          `json:"attempted_at"`
}

// User is the minimal recipient directory entry the email and SMS channels
// need for addressing. Account management itself lives elsewhere.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryResult is what a channel dispatcher reports for one send attempt.
// Dispatchers never propagate errors past their boundary; failures are
// captured here so sibling channels still run.
type DeliveryResult struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Response map[string]any `json:"response,omitempty"`
}
