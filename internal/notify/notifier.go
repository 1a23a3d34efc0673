// Package notify implements the notification collaborator. Delivery is
// best-effort by contract: Notify reports whether the message went out and
// never returns an error, so a flaky mail server can never fail a booking.
package notify

import "context"

// Notifier delivers a message to a recipient contact (an email address, a
// chat id — whatever the concrete sender understands).
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) bool
}

// Noop swallows everything, reporting success. Used when notifications are
// not configured.
type Noop struct{}

func (Noop) Notify(context.Context, string, string, string) bool { return true }
