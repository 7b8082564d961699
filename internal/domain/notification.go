package domain

import "time"

// NotificationKind classifies a user-facing message.
type NotificationKind string

// Notification kinds.
const (
	KindSuccess NotificationKind = "success"
	KindWarning NotificationKind = "warning"
	KindError   NotificationKind = "error"
)

// Notification is a fire-and-forget message for the user interface.
type Notification struct {
	Title     string           `json:"title"`
	Kind      NotificationKind `json:"kind"`
	Detail    string           `json:"detail,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
