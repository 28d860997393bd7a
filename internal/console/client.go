package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// Heartbeat tolerance: the display dot stays green as long as a success
// arrived within max(3 poll intervals, 3 s).
const (
	heartbeatMinWindow   = 3 * time.Second
	heartbeatMultiplier  = 3
	defaultClientTimeout = 5 * time.Second
)

// Stats is the status client's rolling bookkeeping.
type Stats struct {
	Successes     int
	Failures      int
	Online        bool
	LastError     string
	LastLatency   time.Duration
	LastSuccessAt time.Time
}

// Client fetches device status and issues commands against the backend API.
// A failed poll keeps the last-known snapshot in place and only flips the
// online flag.
type Client struct {
	base string
	http *http.Client
	now  func() time.Time

	mu       sync.Mutex
	stats    Stats
	snapshot *models.StatusSnapshot
}

// NewClient returns a client for the given API base URL ("http://host:port").
// A nil httpClient gets a default with a 5 s request timeout.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: httpClient,
		now:  time.Now,
	}
}

// FetchStatus performs one status poll, recording latency and flipping the
// online flag according to the outcome.
func (c *Client) FetchStatus(ctx context.Context) (models.StatusSnapshot, error) {
	start := c.now()
	snap, err := c.getStatus(ctx)
	latency := c.now().Sub(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.LastLatency = latency
	if err != nil {
		c.stats.Failures++
		c.stats.Online = false
		c.stats.LastError = err.Error()
		return models.StatusSnapshot{}, err
	}
	c.stats.Successes++
	c.stats.Online = true
	c.stats.LastError = ""
	c.stats.LastSuccessAt = c.now()
	c.snapshot = &snap
	return snap, nil
}

func (c *Client) getStatus(ctx context.Context) (models.StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/status", nil)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.StatusSnapshot{}, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var snap models.StatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("decode status: %w", err)
	}
	return snap, nil
}

// Stats returns a copy of the rolling counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Snapshot returns the last successfully fetched snapshot, if any.
func (c *Client) Snapshot() (models.StatusSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return models.StatusSnapshot{}, false
	}
	return *c.snapshot, true
}

// Online reports whether the most recent poll succeeded.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Online
}

// HeartbeatOK reports whether a success arrived recently enough for display
// purposes. It is independent of the online flag.
func (c *Client) HeartbeatOK(pollInterval time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats.LastSuccessAt.IsZero() {
		return false
	}
	window := heartbeatMultiplier * pollInterval
	if window < heartbeatMinWindow {
		window = heartbeatMinWindow
	}
	return c.now().Sub(c.stats.LastSuccessAt) <= window
}

// ---- Commands ----

// SetRelay switches one pump relay.
func (c *Client) SetRelay(ctx context.Context, index int, on bool) (models.RelayResponse, error) {
	var out models.RelayResponse
	err := c.postJSON(ctx, "/api/relay", models.RelayCommand{Index: index, On: on}, &out)
	return out, err
}

// SetAutoSwitch switches one of the flow valves.
func (c *Client) SetAutoSwitch(ctx context.Context, which string, on bool) (models.AutoResponse, error) {
	var out models.AutoResponse
	err := c.postJSON(ctx, "/api/auto", models.AutoSwitchCommand{Which: which, On: on}, &out)
	return out, err
}

// SetLift requests a lift direction.
func (c *Client) SetLift(ctx context.Context, state string) (models.LiftResponse, error) {
	var out models.LiftResponse
	err := c.postJSON(ctx, "/api/lift", models.LiftCommand{State: state}, &out)
	return out, err
}

// SetHeater switches the heater relay.
func (c *Client) SetHeater(ctx context.Context, on bool) (models.HeaterResponse, error) {
	var out models.HeaterResponse
	err := c.postJSON(ctx, "/api/heater", models.HeaterCommand{On: on}, &out)
	return out, err
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
