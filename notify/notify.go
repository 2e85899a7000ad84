// Package notify models the platform notification capability: a permission
// state, a one-time permission request and a fire-and-forget show call.
package notify

import "context"

// Permission is the platform-level notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is a single user-facing reminder.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
}

// Notifier delivers notifications. Show is only expected to succeed once
// Permission reports granted.
type Notifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, n Notification) error
}
