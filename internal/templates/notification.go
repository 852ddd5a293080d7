// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"fmt"
	"time"

	"codeberg.org/oliverandrich/vibeflow-recovery/internal/recovery"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html" //nolint:revive,staticcheck // html DSL
)

// DismissPath answers the auto-dismiss and close requests of a toast.
const DismissPath = "/notifications/dismiss"

// NotificationsID is the DOM id of the toast container.
const NotificationsID = "notifications"

// Notice is a toast ready to render. A zero Notice renders nothing.
type Notice struct {
	Message  string
	Severity recovery.Severity
	Delay    time.Duration
}

// NoticeFrom converts a widget notification into a Notice, keeping only the
// time it has left on screen.
func NoticeFrom(n recovery.Notification, now time.Time) Notice {
	if !n.VisibleAt(now) {
		return Notice{}
	}
	return Notice{Message: n.Message, Severity: n.Severity, Delay: n.Remaining(now)}
}

// Toast renders the notice. It removes itself once Delay has passed or the
// close button is pressed.
func Toast(n Notice) g.Node {
	if n.Message == "" {
		return nil
	}
	delay := n.Delay
	if delay <= 0 || delay > recovery.NotificationTimeout {
		delay = recovery.NotificationTimeout
	}
	role := "status"
	if n.Severity == recovery.SeverityError {
		role = "alert"
	}
	return Div(
		Class("toast toast-"+string(n.Severity)),
		Role(role),
		hx.Get(DismissPath),
		hx.Trigger(fmt.Sprintf("load delay:%dms", delay.Milliseconds())),
		hx.Swap("delete"),
		Span(g.Text(n.Message)),
		Button(
			Type("button"),
			Aria("label", T("dismiss")),
			hx.Get(DismissPath),
			hx.Target("closest .toast"),
			hx.Swap("delete"),
			g.Text("×"),
		),
	)
}

// Notifications is the toast container of the layout.
func Notifications(n Notice) g.Node {
	return Div(ID(NotificationsID), Toast(n))
}

// NotificationsOOB replaces the toast container out of band, next to a
// swapped form fragment.
func NotificationsOOB(n Notice) g.Node {
	return Div(ID(NotificationsID), hx.SwapOOB("true"), Toast(n))
}
