// Package slack implements the MessageSender port using the Slack Web API.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/ericfisherdev/commitwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MessageSender = (*Sender)(nil)

// Sender delivers notification text to Slack channels or users via
// chat.postMessage. Targets are Slack conversation IDs.
type Sender struct {
	api *slack.Client
}

// NewSender creates a Sender authenticated with the given bot token.
// Additional options (e.g. slack.OptionAPIURL) are passed through, which
// lets tests point the client at an httptest server.
func NewSender(token string, opts ...slack.Option) *Sender {
	return &Sender{api: slack.New(token, opts...)}
}

// SendMessage posts text to a single conversation.
func (s *Sender) SendMessage(ctx context.Context, target, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, target, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting message to %s: %w", target, err)
	}
	return nil
}
