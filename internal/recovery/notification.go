// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import "time"

// NotificationTimeout caps how long a notification stays visible.
const NotificationTimeout = 5 * time.Second

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the transient message raised after a terminal outcome.
// A visible notification always carries a message.
type Notification struct {
	Message  string
	Severity Severity
	Visible  bool
	ShownAt  time.Time
}

// newNotification returns a visible notification. An empty message yields a
// hidden one.
func newNotification(severity Severity, message string, now time.Time) Notification {
	if message == "" {
		return Notification{}
	}
	return Notification{
		Message:  message,
		Severity: severity,
		Visible:  true,
		ShownAt:  now,
	}
}

// Expired reports whether a visible notification has outlived NotificationTimeout.
func (n Notification) Expired(now time.Time) bool {
	return n.Visible && now.Sub(n.ShownAt) >= NotificationTimeout
}

// VisibleAt reports whether the notification is still on screen at now.
func (n Notification) VisibleAt(now time.Time) bool {
	return n.Visible && !n.Expired(now)
}

// Remaining returns how long the notification stays visible after now.
func (n Notification) Remaining(now time.Time) time.Duration {
	if !n.VisibleAt(now) {
		return 0
	}
	return NotificationTimeout - now.Sub(n.ShownAt)
}

// Dismiss hides the notification.
func (n *Notification) Dismiss() {
	n.Visible = false
}
