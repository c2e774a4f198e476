package amqp

import (
	"encoding/json"
	"time"
)

const (
	NotificationLimitExceeded NotificationType = "limit_exceeded"
	NotificationPurchaseReady NotificationType = "purchase_ready"
)

// NotificationType tags the event that produced a notification.
type NotificationType string

// NotificationMessage is the payload published when the ledger or goal
// services detect a limit breach or a purchase-goal affordability event.
// The engine itself only returns booleans; delivery happens worker-side.
type NotificationMessage struct {
	Type      NotificationType `json:"type"`
	UserID    int64            `json:"user_id"`
	Email     string           `json:"email"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewNotificationMessage creates a notification message stamped with now.
func NewNotificationMessage(typ NotificationType, userID int64, email, subject, body string) *NotificationMessage {
	return &NotificationMessage{
		Type:      typ,
		UserID:    userID,
		Email:     email,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
