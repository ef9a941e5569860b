package domain

import "context"

// Notification is a direct message. Embed renders Content as an embed description.
type Notification struct {
	Content string
	Embed   bool
}

// Notifier delivers direct messages on a best-effort basis. Delivery failures
// are handled by the implementation and never reported to the caller.
type Notifier interface {
	Notify(ctx context.Context, platformID string, n Notification)
}
