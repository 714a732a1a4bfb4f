// Package driven defines the driven ports (outbound dependencies) of the
// application core.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// Sentinel errors returned by GitHubClient implementations. Transport-level
// failures (timeout, DNS, connection reset) are returned as-is, wrapped with
// context; they are retried on the next cycle.
var (
	// ErrNotFound indicates the repository, branch, or commit does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates a missing or rejected credential for a
	// private resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the API rate limit has been exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// GitHubClient defines the driven port for reading repository data from the
// GitHub API.
type GitHubClient interface {
	// FetchRepository returns read-only metadata for a repository.
	FetchRepository(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error)

	// FetchLatestCommit returns the tip commit of the given branch. When
	// branch is empty, the repository's default branch is resolved first;
	// if that resolution fails the error is returned rather than guessing
	// a branch name.
	FetchLatestCommit(ctx context.Context, owner, name, branch string) (*model.CommitSnapshot, error)
}
