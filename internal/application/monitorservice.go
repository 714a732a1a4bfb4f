package application

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
	"github.com/ericfisherdev/commitwatch/internal/domain/port/driven"
	"github.com/ericfisherdev/commitwatch/internal/telemetry"
)

// fallbackBranch is used for state keying and status display when a
// repository's default branch cannot be resolved.
const fallbackBranch = "main"

// errorBackoff is how long the scheduler sleeps after a cycle fails as a
// whole before resuming the regular interval.
const errorBackoff = time.Minute

// checkRequest represents a manual check trigger.
type checkRequest struct {
	done chan error
}

// MonitorService runs the commit change detection cycle: it fetches the tip
// commit of every configured repository, compares it to the persisted
// snapshot, notifies on change, and persists the new snapshot. It also
// drives the periodic schedule and serves manual triggers and status reads.
type MonitorService struct {
	ghClient driven.GitHubClient
	store    driven.StateStore
	notifier *Notifier
	repos    []model.RepositoryRef
	interval time.Duration
	metrics  *telemetry.Metrics

	checkCh chan checkRequest
	started atomic.Bool
}

// NewMonitorService creates a MonitorService with all required dependencies.
func NewMonitorService(
	ghClient driven.GitHubClient,
	store driven.StateStore,
	notifier *Notifier,
	repos []model.RepositoryRef,
	interval time.Duration,
	metrics *telemetry.Metrics,
) *MonitorService {
	return &MonitorService{
		ghClient: ghClient,
		store:    store,
		notifier: notifier,
		repos:    repos,
		interval: interval,
		metrics:  metrics,
		checkCh:  make(chan checkRequest),
	}
}

// Start begins the monitoring loop. It runs an immediate cycle, then cycles
// on the configured interval, and listens for manual check requests so that
// scheduled and manual cycles never run concurrently. Start blocks until the
// context is canceled and is idempotent: a second call returns immediately.
func (s *MonitorService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		slog.Warn("monitor loop already started")
		return
	}
	defer s.started.Store(false)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("initial check cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor loop stopped")
			return
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("check cycle failed", "error", err)
				s.sleep(ctx, errorBackoff)
			}
		case req := <-s.checkCh:
			req.done <- s.runCycle(ctx)
		}
	}
}

// CheckNow triggers a check cycle outside the schedule and blocks until it
// completes or the context is canceled. The returned error reports the
// outcome of the cycle as a whole, not per repository. When the background
// loop is running the request is dispatched through it, so manual and
// scheduled cycles stay serialized; otherwise the cycle runs directly.
func (s *MonitorService) CheckNow(ctx context.Context) error {
	if !s.started.Load() {
		return s.runCycle(ctx)
	}

	req := checkRequest{done: make(chan error, 1)}

	select {
	case s.checkCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status reports, for each configured repository, the resolved effective
// branch and the last persisted snapshot, or a no-data marker if none
// exists yet.
func (s *MonitorService) Status(ctx context.Context) ([]model.RepoStatus, error) {
	state := s.loadState()

	statuses := make([]model.RepoStatus, 0, len(s.repos))
	for _, ref := range s.repos {
		if !ref.IsValid() {
			continue
		}

		branch := s.resolveBranch(ctx, ref)
		status := model.RepoStatus{
			Owner:  ref.Owner,
			Name:   ref.Name,
			Branch: branch,
		}

		if snap, ok := state[model.StateKey(ref.Owner, ref.Name, branch)]; ok {
			status.HasData = true
			status.SHA = snap.SHA
			status.Date = snap.Date
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// runCycle executes one full pass over all configured repositories. Per-ref
// failures are contained: a fetch error or malformed ref only skips that
// repository for this cycle.
func (s *MonitorService) runCycle(ctx context.Context) error {
	if len(s.repos) == 0 {
		slog.Debug("no repositories configured, skipping cycle")
		return nil
	}

	s.metrics.CheckCycles.Inc()
	start := time.Now()

	state := s.loadState()

	var changes, fetchErrors int
	for _, ref := range s.repos {
		if ctx.Err() != nil {
			s.metrics.CycleErrors.Inc()
			return ctx.Err()
		}

		if !ref.IsValid() {
			slog.Warn("skipping invalid repository entry", "owner", ref.Owner, "name", ref.Name)
			continue
		}

		changed, err := s.checkRepo(ctx, ref, state)
		if err != nil {
			fetchErrors++
			continue
		}
		if changed {
			changes++
		}
	}

	slog.Info("check cycle complete",
		"repos", len(s.repos),
		"changes", changes,
		"errors", fetchErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// checkRepo fetches the current tip commit for one repository, compares it
// to the persisted snapshot, and on change notifies and persists the whole
// state immediately so partial cycle progress survives a crash.
func (s *MonitorService) checkRepo(ctx context.Context, ref model.RepositoryRef, state model.TrackedState) (bool, error) {
	commit, err := s.ghClient.FetchLatestCommit(ctx, ref.Owner, ref.Name, ref.Branch)
	if err != nil {
		s.metrics.FetchErrors.WithLabelValues(ref.FullName()).Inc()
		logFetchError(ref, err)
		return false, err
	}

	// Metadata is fetched even when the branch is explicit: the default
	// branch feeds the state key resolution and the repository URL feeds
	// the notification. A metadata failure degrades to the fallback branch
	// and suppresses the notification, but never the state update.
	meta, err := s.ghClient.FetchRepository(ctx, ref.Owner, ref.Name)
	if err != nil {
		slog.Warn("repository metadata unavailable", "repo", ref.FullName(), "error", err)
		meta = nil
	}

	branch := effectiveBranch(ref, meta)
	key := model.StateKey(ref.Owner, ref.Name, branch)

	old, seen := state[key]
	if seen && old.SHA == commit.SHA {
		return false, nil
	}

	slog.Info("new commit detected", "repo", key, "sha", commit.ShortSHA())
	s.metrics.CommitChanges.WithLabelValues(ref.FullName()).Inc()

	switch {
	case meta == nil:
		slog.Warn("skipping notification, repository metadata unavailable", "repo", key)
	case !s.notifier.HasTargets():
		slog.Debug("skipping notification, no targets configured", "repo", key)
	default:
		var oldCommit *model.CommitSnapshot
		if seen {
			oldCommit = &old
		}
		s.notifier.Notify(ctx, *meta, *commit, oldCommit)
	}

	// State is authoritative even when the notification was skipped or
	// failed. A save failure is logged, not returned: the unchanged sha on
	// disk means the change is naturally re-detected next cycle.
	state[key] = *commit
	if err := s.store.Save(state); err != nil {
		slog.Error("state save failed", "repo", key, "error", err)
	}

	return true, nil
}

// loadState loads the persisted state, falling back to an empty mapping
// with a warning when the document is unreadable. The document on disk is
// not discarded; it is simply ignored for this run.
func (s *MonitorService) loadState() model.TrackedState {
	state, err := s.store.Load()
	if err != nil {
		if errors.Is(err, driven.ErrCorruptState) {
			slog.Warn("state document unreadable, starting from empty", "error", err)
		} else {
			slog.Error("state load failed, starting from empty", "error", err)
		}
		return model.TrackedState{}
	}
	return state
}

// resolveBranch resolves the effective branch for status display using the
// same order as detection: explicit ref branch, then the repository's
// default branch, then the hardcoded fallback.
func (s *MonitorService) resolveBranch(ctx context.Context, ref model.RepositoryRef) string {
	if ref.Branch != "" {
		return ref.Branch
	}

	meta, err := s.ghClient.FetchRepository(ctx, ref.Owner, ref.Name)
	if err != nil {
		slog.Warn("repository metadata unavailable", "repo", ref.FullName(), "error", err)
		return fallbackBranch
	}

	return effectiveBranch(ref, meta)
}

// effectiveBranch picks the branch used for state keying: the explicit ref
// branch, else the repository's default branch, else the fallback literal.
func effectiveBranch(ref model.RepositoryRef, meta *model.RepositoryMetadata) string {
	if ref.Branch != "" {
		return ref.Branch
	}
	if meta != nil && meta.DefaultBranch != "" {
		return meta.DefaultBranch
	}
	return fallbackBranch
}

// logFetchError logs a failed commit fetch at a level matching its class.
func logFetchError(ref model.RepositoryRef, err error) {
	switch {
	case errors.Is(err, driven.ErrNotFound):
		slog.Warn("repository or branch not found", "repo", ref.FullName(), "branch", ref.Branch, "error", err)
	case errors.Is(err, driven.ErrUnauthorized):
		slog.Warn("access denied", "repo", ref.FullName(), "error", err)
	case errors.Is(err, driven.ErrRateLimited):
		slog.Warn("rate limited", "repo", ref.FullName(), "error", err)
	default:
		slog.Error("commit fetch failed", "repo", ref.FullName(), "error", err)
	}
}

// sleep waits for the given duration or until the context is canceled.
func (s *MonitorService) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
