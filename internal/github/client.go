package github

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	userAgent         = "trilinos-status/1.0"
	maxRetries        = 3
	baseBackoff       = time.Second
	requestTimeoutSec = 30
	// search rate-limit windows are one minute long
	defaultRateLimitWait = 60 * time.Second
)

// New creates a GitHub client for the search API.
// An empty token yields an unauthenticated client with a lower rate limit;
// a non-empty apiURL points the client at a GitHub Enterprise server.
func New(ctx context.Context, token, apiURL string, logger *slog.Logger) (*github.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var base http.RoundTripper = http.DefaultTransport
	if token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	} else {
		logger.Debug("No GitHub token configured, using unauthenticated search")
	}

	httpClient := &http.Client{
		Timeout: requestTimeoutSec * time.Second,
		Transport: &retryTransport{
			base:       base,
			maxRetries: maxRetries,
			sleep:      sleepContext,
			logger:     logger,
		},
	}

	client := github.NewClient(httpClient)
	client.UserAgent = userAgent

	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
		logger.Debug("Using GitHub Enterprise API", "url", client.BaseURL.String())
	}

	return client, nil
}

// retryTransport retries transient GitHub failures: network errors, 5xx and
// rate limiting. Authorization failures are returned immediately.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

func (rt *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= rt.maxRetries; attempt++ {
		attempts++
		resp, err := rt.base.RoundTrip(req.Clone(req.Context()))

		var wait time.Duration
		switch {
		case err != nil:
			lastErr = err
			wait = calculateBackoff(attempt)
		case isRateLimited(resp):
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
			wait = rateLimitWait(resp)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error (status %d)", resp.StatusCode)
			wait = calculateBackoff(attempt)
		default:
			// Success, or an error such as 401/404/422 that retrying cannot fix
			return resp, nil
		}

		// Never sleep past the request deadline; the last response is returned instead
		if attempt == rt.maxRetries || !fitsDeadline(req.Context(), wait) {
			if resp != nil {
				return resp, nil
			}
			break
		}
		if resp != nil {
			resp.Body.Close()
		}

		rt.logger.Debug("Retrying GitHub request", "url", req.URL.Path, "attempt", attempt+1, "wait", wait, "reason", lastErr)
		if err := rt.sleep(req.Context(), wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("GitHub API request failed after %d attempts: %w", attempts, lastErr)
}

// isRateLimited reports primary (403 with rate headers) and secondary (429)
// rate limiting. A 403 without those headers is an authorization problem.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	if resp.Header.Get("Retry-After") != "" {
		return true
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// rateLimitWait reads Retry-After, then X-RateLimit-Reset
func rateLimitWait(resp *http.Response) time.Duration {
	if retryAfterStr := resp.Header.Get("Retry-After"); retryAfterStr != "" {
		if retryAfterSec, err := strconv.Atoi(retryAfterStr); err == nil {
			return time.Duration(retryAfterSec) * time.Second
		}
	}

	if resetTimeStr := resp.Header.Get("X-RateLimit-Reset"); resetTimeStr != "" {
		if resetTime, err := strconv.ParseInt(resetTimeStr, 10, 64); err == nil {
			if wait := time.Until(time.Unix(resetTime, 0)); wait > 0 {
				return wait + time.Second
			}
		}
	}

	return defaultRateLimitWait
}

// calculateBackoff doubles the wait for every attempt: 1s, 2s, 4s...
func calculateBackoff(attempt int) time.Duration {
	return time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt)))
}

// fitsDeadline reports whether a wait of d ends before the context deadline.
// http.Client.Timeout is applied to the request context, so it is seen here.
func fitsDeadline(ctx context.Context, d time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) > d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
