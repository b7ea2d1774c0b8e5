package github

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"
)

// roundTripFunc serves canned responses in order
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func response(status int, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func newTestTransport(responses ...func() (*http.Response, error)) (*retryTransport, *[]time.Duration, *int) {
	var waits []time.Duration
	calls := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			i := calls
			calls++
			if i >= len(responses) {
				i = len(responses) - 1
			}
			return responses[i]()
		}),
		maxRetries: maxRetries,
		sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return rt, &waits, &calls
}

func ok(status int, headers map[string]string) func() (*http.Response, error) {
	return func() (*http.Response, error) { return response(status, headers), nil }
}

func TestRetryTransport(t *testing.T) {
	tests := []struct {
		name           string
		responses      []func() (*http.Response, error)
		expectedStatus int
		expectedCalls  int
		expectedWaits  []time.Duration
		wantErr        bool
	}{
		{
			name:           "success first try",
			responses:      []func() (*http.Response, error){ok(200, nil)},
			expectedStatus: 200,
			expectedCalls:  1,
		},
		{
			name:           "server error then success",
			responses:      []func() (*http.Response, error){ok(502, nil), ok(200, nil)},
			expectedStatus: 200,
			expectedCalls:  2,
			expectedWaits:  []time.Duration{time.Second},
		},
		{
			name:           "unauthorized is not retried",
			responses:      []func() (*http.Response, error){ok(401, nil)},
			expectedStatus: 401,
			expectedCalls:  1,
		},
		{
			name:           "forbidden without rate headers is not retried",
			responses:      []func() (*http.Response, error){ok(403, nil)},
			expectedStatus: 403,
			expectedCalls:  1,
		},
		{
			name:           "validation failure is not retried",
			responses:      []func() (*http.Response, error){ok(422, nil)},
			expectedStatus: 422,
			expectedCalls:  1,
		},
		{
			name: "secondary rate limit honours retry-after",
			responses: []func() (*http.Response, error){
				ok(429, map[string]string{"Retry-After": "7"}),
				ok(200, nil),
			},
			expectedStatus: 200,
			expectedCalls:  2,
			expectedWaits:  []time.Duration{7 * time.Second},
		},
		{
			name: "primary rate limit without reset uses default wait",
			responses: []func() (*http.Response, error){
				ok(403, map[string]string{"X-RateLimit-Remaining": "0"}),
				ok(200, nil),
			},
			expectedStatus: 200,
			expectedCalls:  2,
			expectedWaits:  []time.Duration{defaultRateLimitWait},
		},
		{
			name:           "persistent server error returns last response",
			responses:      []func() (*http.Response, error){ok(500, nil)},
			expectedStatus: 500,
			expectedCalls:  maxRetries + 1,
			expectedWaits:  []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		},
		{
			name: "persistent network error",
			responses: []func() (*http.Response, error){
				func() (*http.Response, error) { return nil, errors.New("connection reset") },
			},
			expectedCalls: maxRetries + 1,
			expectedWaits: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, waits, calls := newTestTransport(tt.responses...)
			req, _ := http.NewRequest(http.MethodGet, "https://api.github.com/search/issues", nil)

			resp, err := rt.RoundTrip(req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.StatusCode != tt.expectedStatus {
					t.Errorf("expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
				}
			}

			if *calls != tt.expectedCalls {
				t.Errorf("expected %d calls, got %d", tt.expectedCalls, *calls)
			}
			if len(*waits) != len(tt.expectedWaits) {
				t.Fatalf("expected waits %v, got %v", tt.expectedWaits, *waits)
			}
			for i := range tt.expectedWaits {
				if (*waits)[i] != tt.expectedWaits[i] {
					t.Errorf("wait %d: expected %v, got %v", i, tt.expectedWaits[i], (*waits)[i])
				}
			}
		})
	}
}

func TestRetryTransportStopsOnCancel(t *testing.T) {
	rt, _, calls := newTestTransport(ok(503, nil))
	rt.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/search/issues", nil)

	_, err := rt.RoundTrip(req)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 call, got %d", *calls)
	}
}

func TestNewClient(t *testing.T) {
	client, err := New(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.UserAgent != userAgent {
		t.Errorf("expected user agent %q, got %q", userAgent, client.UserAgent)
	}
	if client.BaseURL.String() != "https://api.github.com/" {
		t.Errorf("unexpected base URL %s", client.BaseURL)
	}
}

func TestNewClientEnterprise(t *testing.T) {
	client, err := New(context.Background(), "token", "https://github.example.com/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.BaseURL.String() != "https://github.example.com/api/v3/" {
		t.Errorf("unexpected base URL %s", client.BaseURL)
	}
	if client.UserAgent != userAgent {
		t.Errorf("expected user agent to survive enterprise setup, got %q", client.UserAgent)
	}
}

func TestRetryTransportGivesUpWhenWaitPassesDeadline(t *testing.T) {
	rt, waits, calls := newTestTransport(
		ok(403, map[string]string{"X-RateLimit-Remaining": "0"}),
		ok(200, nil),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/search/issues", nil)

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected the rate limited response, got status %d", resp.StatusCode)
	}
	if *calls != 1 {
		t.Errorf("expected 1 call, got %d", *calls)
	}
	if len(*waits) != 0 {
		t.Errorf("expected no waits, got %v", *waits)
	}
}

func TestRetryTransportHonoursClientTimeout(t *testing.T) {
	calls := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return response(http.StatusTooManyRequests, map[string]string{"Retry-After": "5"}), nil
		}),
		maxRetries: maxRetries,
		sleep:      sleepContext,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	client := &http.Client{Timeout: 2 * time.Second, Transport: rt}

	start := time.Now()
	resp, err := client.Get("https://api.github.com/search/issues")
	if err != nil {
		t.Fatalf("unexpected error after %v: %v", time.Since(start), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", resp.StatusCode)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected an immediate answer, took %v", elapsed)
	}
}

func TestFitsDeadline(t *testing.T) {
	if !fitsDeadline(context.Background(), time.Hour) {
		t.Error("expected any wait to fit without a deadline")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if !fitsDeadline(ctx, time.Second) {
		t.Error("expected a short wait to fit")
	}
	if fitsDeadline(ctx, defaultRateLimitWait) {
		t.Error("expected the default rate limit wait to pass a one minute deadline")
	}
}
