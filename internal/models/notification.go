package models

// NotificationLevel mirrors the toast severity shown to visitors.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a transient, auto-dismissing message for the client.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
}

// Success builds a success notification.
func Success(message string) *Notification {
	return &Notification{Level: NotificationSuccess, Message: message}
}

// Failure builds an error notification, optionally pinned to a form field.
func Failure(message, field string) *Notification {
	return &Notification{Level: NotificationError, Message: message, Field: field}
}
