package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"
	"github.com/trilinos/status-table-cli/internal/input"
)

// Counter counts pull requests matching search queries
type Counter struct {
	client *github.Client
	logger *slog.Logger
}

// NewCounter wraps a GitHub client
func NewCounter(client *github.Client, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{client: client, logger: logger}
}

// CountPullRequests returns the number of pull requests in repo matching q.
// Only the total is needed, so a single result per page is requested.
func (c *Counter) CountPullRequests(ctx context.Context, repo input.RepoRef, q Query) (int, error) {
	full := Query{"repo:" + repo.String()}.With(q...)
	c.logger.Debug("Searching pull requests", "query", full.String())

	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := c.client.Search.Issues(ctx, full.String(), opts)
	if err != nil {
		if enhancedErr := enhanceGitHubError(err, repo, q); enhancedErr != nil {
			return 0, enhancedErr
		}
		return 0, fmt.Errorf("failed to search %s for %q: %w", repo, q.String(), err)
	}

	if result.GetIncompleteResults() {
		c.logger.Warn("GitHub reported incomplete search results", "query", full.String())
	}
	return result.GetTotal(), nil
}

// CountAll runs every query with at most concurrency searches in flight.
// The first error cancels the remaining searches.
func (c *Counter) CountAll(ctx context.Context, repo input.RepoRef, queries map[Category]Query, concurrency int) (map[Category]int, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		counts   = make(map[Category]int, len(queries))
	)
	semaphore := make(chan struct{}, concurrency)

	for category, q := range queries {
		wg.Add(1)
		go func(category Category, q Query) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			if ctx.Err() != nil {
				return
			}

			total, err := c.CountPullRequests(ctx, repo, q)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", category, err)
					cancel()
				}
				return
			}
			counts[category] = total
			c.logger.Info("Counted pull requests", "category", category.String(), "total", total)
		}(category, q)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return counts, nil
}

// enhanceGitHubError turns common search API failures into actionable messages
func enhanceGitHubError(err error, repo input.RepoRef, q Query) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("GitHub API authentication failed for %s. Please check your GITHUB_TOKEN is valid", repo)

		case http.StatusForbidden:
			msg := strings.ToLower(ghErr.Message)
			if strings.Contains(msg, "sso") || strings.Contains(msg, "organization") {
				return fmt.Errorf("GitHub API access denied for %s. Your token may require SSO authorization for this organization. Visit: https://github.com/settings/tokens and authorize your token for SSO", repo)
			}
			return fmt.Errorf("GitHub API access denied for %s. Your token may not have sufficient permissions, or the search rate limit is exhausted", repo)

		case http.StatusUnprocessableEntity:
			return fmt.Errorf("GitHub rejected the search %q for %s: %s", q.String(), repo, ghErr.Message)
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("GitHub search rate limit exceeded for %s, resets at %s. Set GITHUB_TOKEN for a higher limit",
			repo, rateErr.Rate.Reset.Time.Format("15:04:05"))
	}

	if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline exceeded") {
		return fmt.Errorf("GitHub API request timed out for %s. Please check your network connection and try again", repo)
	}

	return nil
}
