// Package mail sends outbound notification email. Delivery is
// fire-and-forget: callers log failures and carry on, a lost notification
// never fails the request that triggered it.
package mail

import "context"

// Notifier sends a plain-text email to a single recipient.
type Notifier interface {
	// Send delivers the message. Implementations should honor ctx
	// cancellation where the underlying transport allows it.
	Send(ctx context.Context, to, subject, body string) error
}
