package models

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a short non-blocking message shown once to the shopper.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

func Success(message string) *Notification {
	return &Notification{Message: message, Kind: NotificationSuccess}
}

func Failure(message string) *Notification {
	return &Notification{Message: message, Kind: NotificationError}
}
