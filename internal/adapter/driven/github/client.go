// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
	"github.com/ericfisherdev/commitwatch/internal/domain/port/driven"
)

// requestTimeout bounds every outbound API call so a hanging remote cannot
// stall a check cycle indefinitely.
const requestTimeout = 30 * time.Second

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client)
//
// The token is optional; when empty the client makes unauthenticated
// requests subject to the API's anonymous rate limits.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = requestTimeout

	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchRepository retrieves read-only metadata for the given repository.
func (c *Client) FetchRepository(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error) {
	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, mapError(fmt.Sprintf("fetching repository %s/%s", owner, name), err)
	}

	logRateLimit(resp, owner+"/"+name)

	return &model.RepositoryMetadata{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		HTMLURL:       repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// FetchLatestCommit retrieves the tip commit of the given branch. When branch
// is empty, the repository's default branch is resolved via FetchRepository
// first; a failed resolution propagates rather than guessing a branch name.
func (c *Client) FetchLatestCommit(ctx context.Context, owner, name, branch string) (*model.CommitSnapshot, error) {
	if branch == "" {
		meta, err := c.FetchRepository(ctx, owner, name)
		if err != nil {
			return nil, fmt.Errorf("resolving default branch for %s/%s: %w", owner, name, err)
		}
		branch = meta.DefaultBranch
	}

	commit, resp, err := c.gh.Repositories.GetCommit(ctx, owner, name, branch, nil)
	if err != nil {
		return nil, mapError(fmt.Sprintf("fetching commit %s/%s@%s", owner, name, branch), err)
	}

	logRateLimit(resp, owner+"/"+name+"@"+branch)

	return mapCommit(commit), nil
}

// mapCommit converts a go-github RepositoryCommit to a domain CommitSnapshot.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapCommit(commit *gh.RepositoryCommit) *model.CommitSnapshot {
	var date string
	if authored := commit.GetCommit().GetAuthor().GetDate(); !authored.IsZero() {
		date = authored.UTC().Format(time.RFC3339)
	}

	return &model.CommitSnapshot{
		SHA:     commit.GetSHA(),
		Message: commit.GetCommit().GetMessage(),
		Author:  commit.GetCommit().GetAuthor().GetName(),
		Date:    date,
		URL:     commit.GetHTMLURL(),
	}
}

// mapError wraps a go-github error with the matching port sentinel so the
// application layer can branch on the failure class without knowing the
// transport. Unrecognized errors (network, protocol) are wrapped as-is.
func mapError(op string, err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w", op, driven.ErrRateLimited)
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, driven.ErrNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w", op, driven.ErrUnauthorized)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
