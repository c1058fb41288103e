// Package syncclient checks connectivity with the remote authority and
// retrieves its last-sync metadata.
//
// Operations return immediately and deliver exactly one Status on the
// returned channel. At most one operation runs at a time; overlapping calls
// fail with ErrBusy instead of queuing. A completed connectivity check starts
// a cooldown during which further checks fail with ErrCoolingDown.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mmynk/duoledger/internal/auth"
	"github.com/mmynk/duoledger/internal/metrics"
	"github.com/mmynk/duoledger/internal/models"
)

const (
	DefaultCooldown = 10 * time.Second
	DefaultTimeout  = 10 * time.Second

	maxBodyBytes = 1 << 20
)

var (
	ErrBusy        = errors.New("sync operation already in flight")
	ErrCoolingDown = errors.New("sync check cooling down")
	ErrNotOnline   = errors.New("sync client is not online")
)

// TokenSource supplies the configured sync token.
type TokenSource interface {
	SyncToken(ctx context.Context) (string, bool, error)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL  string
	Cooldown time.Duration
	Timeout  time.Duration

	// HTTPClient overrides the transport; its Timeout is left untouched.
	HTTPClient *http.Client
	Metrics    *metrics.Client
	Now        func() time.Time
}

// Client is the sync status client.
type Client struct {
	baseURL  string
	tokens   TokenSource
	http     *http.Client
	cooldown time.Duration
	metrics  *metrics.Client
	now      func() time.Time

	inflight *semaphore.Weighted

	mu        sync.Mutex
	status    Status
	lastCheck time.Time
}

// New creates a Client. It starts Unauthenticated and makes no requests.
func New(tokens TokenSource, opts Options) (*Client, error) {
	if _, err := url.Parse(opts.BaseURL); err != nil || opts.BaseURL == "" {
		return nil, fmt.Errorf("invalid sync base URL %q", opts.BaseURL)
	}

	c := &Client{
		baseURL:  opts.BaseURL,
		tokens:   tokens,
		http:     opts.HTTPClient,
		cooldown: opts.Cooldown,
		metrics:  opts.Metrics,
		now:      opts.Now,
		inflight: semaphore.NewWeighted(1),
		status:   Status{State: Unauthenticated},
	}
	if c.cooldown == 0 {
		c.cooldown = DefaultCooldown
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Status returns the current snapshot.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CheckConnectivity starts a connectivity check. Without a token the result
// is Unauthenticated and no request is made.
func (c *Client) CheckConnectivity(ctx context.Context) (<-chan Status, error) {
	if !c.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}

	c.mu.Lock()
	if !c.lastCheck.IsZero() && c.now().Sub(c.lastCheck) < c.cooldown {
		c.mu.Unlock()
		c.inflight.Release(1)
		return nil, ErrCoolingDown
	}
	c.status.State = Checking
	c.mu.Unlock()

	return c.run(ctx, "check", func(ctx context.Context, token string) Status {
		next := c.Status()
		resp, err := c.get(ctx, "check", token)
		if err != nil {
			next.State, next.Err = Offline, err
			return next
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

		next.State, next.Err = stateFor(resp.StatusCode), nil
		if next.State == Offline {
			next.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return next
	}), nil
}

// FetchLastSync retrieves the server's last-sync timestamp and version.
// It is only valid while Online.
func (c *Client) FetchLastSync(ctx context.Context) (<-chan Status, error) {
	if !c.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}

	c.mu.Lock()
	if c.status.State != Online {
		c.mu.Unlock()
		c.inflight.Release(1)
		return nil, ErrNotOnline
	}
	c.status.State = Checking
	c.mu.Unlock()

	return c.run(ctx, "last_sync", func(ctx context.Context, token string) Status {
		next := c.Status()
		resp, err := c.get(ctx, "last-sync", token)
		if err != nil {
			next.State, next.Err = Offline, err
			return next
		}
		defer resp.Body.Close()

		if state := stateFor(resp.StatusCode); state != Online {
			io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			next.State, next.Err = state, nil
			if state == Offline {
				next.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
			return next
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			next.State, next.Err = Offline, err
			return next
		}
		timestamp, version, err := parseLastSync(body)
		if err != nil {
			next.State, next.Err = Offline, err
			return next
		}

		next.State, next.Err = Online, nil
		next.LastSyncVersion = version
		next.HasSynced = timestamp >= 0
		next.LastSyncAt = time.Time{}
		if next.HasSynced {
			next.LastSyncAt = time.Unix(timestamp, 0).UTC()
		}
		return next
	}), nil
}

// run executes op in its own goroutine and publishes its result. The caller
// must hold the in-flight slot.
func (c *Client) run(ctx context.Context, name string, op func(context.Context, string) Status) <-chan Status {
	out := make(chan Status, 1)
	ctx = context.WithoutCancel(ctx)

	go func() {
		start := c.now()
		token, ok, err := c.tokens.SyncToken(ctx)

		var next Status
		networked := false
		switch {
		case err != nil || !ok:
			next = c.Status()
			next.State, next.Err = Unauthenticated, err
		default:
			next = op(ctx, token)
			next.CheckedAt = c.now()
			networked = true
		}

		c.mu.Lock()
		c.status = next
		if networked && name == "check" {
			c.lastCheck = next.CheckedAt
		}
		c.mu.Unlock()

		if c.metrics != nil {
			c.metrics.Checks.WithLabelValues(name, next.State.String()).Inc()
		}
		attrs := []any{"op", name, "state", next.State.String(), "duration_ms", c.now().Sub(start).Milliseconds()}
		if next.Err != nil {
			slog.Warn("Sync operation failed", append(attrs, "error", next.Err)...)
		} else {
			slog.Info("Sync operation finished", attrs...)
		}

		// Free the slot before publishing so a receiver can start the next call.
		c.inflight.Release(1)
		out <- next
		close(out)
	}()

	return out
}

func (c *Client) get(ctx context.Context, path, token string) (*http.Response, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s URL: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Authorization", auth.FormatHeader(token))
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

func stateFor(code int) State {
	switch {
	case code >= 200 && code < 300:
		return Online
	case code == http.StatusUnauthorized:
		return Unauthorized
	default:
		return Offline
	}
}

// parseLastSync decodes {"timestamp": int, "version": int}. Both fields are
// required and must be JSON integers.
func parseLastSync(body []byte) (timestamp, version int64, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", models.ErrParse, err)
	}
	if timestamp, err = intField(raw, "timestamp"); err != nil {
		return 0, 0, err
	}
	if version, err = intField(raw, "version"); err != nil {
		return 0, 0, err
	}
	return timestamp, version, nil
}

func intField(raw map[string]json.RawMessage, name string) (int64, error) {
	value, ok := raw[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", models.ErrParse, name)
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(value)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer: %s", models.ErrParse, name, value)
	}
	return n, nil
}
