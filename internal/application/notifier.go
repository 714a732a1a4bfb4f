// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
	"github.com/ericfisherdev/commitwatch/internal/domain/port/driven"
	"github.com/ericfisherdev/commitwatch/internal/telemetry"
)

// maxMessageLen bounds how much of a commit message is quoted in a
// notification before it is truncated with an ellipsis marker.
const maxMessageLen = 50

// Notifier formats commit change messages and delivers them to each
// configured recipient independently. Delivery is best effort: a failed
// recipient is logged and the remaining recipients are still attempted.
type Notifier struct {
	sender  driven.MessageSender
	targets []string
	metrics *telemetry.Metrics
}

// NewNotifier creates a Notifier bound to a sender and a recipient list.
func NewNotifier(sender driven.MessageSender, targets []string, metrics *telemetry.Metrics) *Notifier {
	return &Notifier{
		sender:  sender,
		targets: targets,
		metrics: metrics,
	}
}

// HasTargets reports whether at least one recipient is configured.
func (n *Notifier) HasTargets() bool {
	return len(n.targets) > 0
}

// Notify sends a formatted change message for the given repository to every
// configured recipient. oldCommit may be nil when the repository is seen for
// the first time.
func (n *Notifier) Notify(ctx context.Context, meta model.RepositoryMetadata, newCommit model.CommitSnapshot, oldCommit *model.CommitSnapshot) {
	text := FormatCommitMessage(meta, newCommit, oldCommit)

	for _, target := range n.targets {
		if err := n.sender.SendMessage(ctx, target, text); err != nil {
			n.metrics.NotificationErrors.Inc()
			slog.Error("notification delivery failed",
				"repo", meta.FullName(),
				"target", target,
				"error", err,
			)
			continue
		}

		n.metrics.NotificationsSent.Inc()
		slog.Info("notification sent", "repo", meta.FullName(), "target", target)
	}
}

// FormatCommitMessage renders the human-readable change message for a new
// tip commit, including the previous short sha for context when available.
func FormatCommitMessage(meta model.RepositoryMetadata, newCommit model.CommitSnapshot, oldCommit *model.CommitSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New commit in %s\n", meta.FullName())
	fmt.Fprintf(&b, "%s\n\n", meta.HTMLURL)
	fmt.Fprintf(&b, "commit:  %s\n", newCommit.ShortSHA())
	fmt.Fprintf(&b, "author:  %s\n", newCommit.Author)
	fmt.Fprintf(&b, "date:    %s\n", newCommit.Date)
	fmt.Fprintf(&b, "message: %s\n", truncate(newCommit.Message, maxMessageLen))
	fmt.Fprintf(&b, "%s\n", newCommit.URL)

	if oldCommit != nil {
		fmt.Fprintf(&b, "\nprevious commit: %s\n", oldCommit.ShortSHA())
	}

	return b.String()
}

// truncate shortens s to at most limit runes, appending "..." when anything
// was cut off. Counting runes keeps multi-byte commit messages intact.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
