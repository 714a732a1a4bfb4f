package driven

import "context"

// MessageSender defines the driven port for delivering a notification text
// to a single recipient. Recipient identifiers are opaque to the core
// (Slack channel or user IDs in the shipped adapter).
type MessageSender interface {
	SendMessage(ctx context.Context, target, text string) error
}
