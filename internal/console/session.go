package console

import (
	"context"
	"sync"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/logger"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

// Tick cadences of the session's background activities. The poll loop itself
// runs at the configured interval; these two are fixed.
const (
	runtimeTickInterval = 1 * time.Second
	liftTickInterval    = 100 * time.Millisecond
)

// SessionConfig carries the per-session tunables.
type SessionConfig struct {
	APIBase      string
	PollInterval time.Duration
	LiftSpeedMMS float64
	LiftMaxMM    float64
	HistoryMax   int // 0 means default (4000)
	EventMax     int // 0 means default (80)
}

// Session is one operator console's derived state: the status client, event
// deriver, alarm list, history ring, lift estimator, and command dispatcher,
// advanced by a single event-loop goroutine. All derived state is owned by
// that loop; accessors copy under the session mutex.
type Session struct {
	cfg        SessionConfig
	log        *logger.Logger
	client     *Client
	deriver    *Deriver
	feed       *EventFeed
	history    *HistoryRecorder
	lift       *LiftEstimator
	dispatcher *Dispatcher

	forceCh chan struct{}

	mu         sync.Mutex
	prev       *models.StatusSnapshot // last successful snapshot, diff baseline
	polled     bool                   // whether any poll completed yet
	online     bool
	everOnline bool // a recovery event needs a prior online period
	alarms  []AlarmItem
	lastMsg string // last user-facing command failure
}

// NewSession builds a session against the given API base. The log may be nil.
func NewSession(cfg SessionConfig, log *logger.Logger) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	s := &Session{
		cfg:     cfg,
		log:     log,
		client:  NewClient(cfg.APIBase, nil),
		deriver: NewDeriver(),
		feed:    NewEventFeed(cfg.EventMax),
		history: NewHistoryRecorder(cfg.HistoryMax),
		lift:    NewLiftEstimator(cfg.LiftSpeedMMS, cfg.LiftMaxMM),
		forceCh: make(chan struct{}, 1),
	}
	s.dispatcher = NewDispatcher(s.client, s.ForceRefresh, s.noteFailure)
	return s
}

// Run drives the three periodic activities until ctx is canceled: the poll
// loop (no overlap: each cycle completes before the next is scheduled), the
// 1 s runtime accumulator, and the 100 ms lift dead-reckoning tick.
// Cancellation stops every timer; nothing fires after Run returns.
func (s *Session) Run(ctx context.Context) {
	pollTimer := time.NewTimer(0) // first poll immediately
	runtimeTick := time.NewTicker(runtimeTickInterval)
	liftTick := time.NewTicker(liftTickInterval)
	defer func() {
		pollTimer.Stop()
		runtimeTick.Stop()
		liftTick.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTimer.C:
			s.pollOnce(ctx)
			pollTimer.Reset(s.cfg.PollInterval)
		case <-s.forceCh:
			if !pollTimer.Stop() {
				// drain a concurrently fired timer so Reset is safe
				select {
				case <-pollTimer.C:
				default:
				}
			}
			s.pollOnce(ctx)
			pollTimer.Reset(s.cfg.PollInterval)
		case <-runtimeTick.C:
			s.tickRuntime()
		case <-liftTick.C:
			s.tickLift(liftTickInterval)
		}
	}
}

// ForceRefresh requests an immediate out-of-cycle poll. Multiple requests
// before the loop reacts collapse into one.
func (s *Session) ForceRefresh() {
	select {
	case s.forceCh <- struct{}{}:
	default:
	}
}

// pollOnce fetches status and folds the result into the derived state.
// A failed poll keeps the previous snapshot as the diff baseline; failures do
// not count as snapshots.
func (s *Session) pollOnce(ctx context.Context) {
	snap, err := s.client.FetchStatus(ctx)
	now := time.Now()

	s.mu.Lock()
	prevOnline := s.online
	baselined := s.polled
	s.polled = true

	if err != nil {
		s.online = false
		if baselined {
			if ev := s.deriver.OnlineTransition(prevOnline, false, now); ev != nil {
				s.feed.Push(*ev)
				s.logEvent(*ev)
			}
		}
		s.alarms = EvaluateAlarms(s.fallbackSnapshot(), false)
		s.mu.Unlock()
		return
	}

	s.online = true
	if baselined && s.everOnline {
		if ev := s.deriver.OnlineTransition(prevOnline, true, now); ev != nil {
			s.feed.Push(*ev)
			s.logEvent(*ev)
		}
	}
	s.everOnline = true

	events := s.deriver.Diff(s.prev, snap, now)
	s.feed.Push(events...)
	for _, ev := range events {
		s.logEvent(ev)
	}

	s.history.Record(snap, now)
	s.lift.Reconcile(snap.Lift)
	s.alarms = EvaluateAlarms(snap, true)
	s.prev = &snap
	s.mu.Unlock()
}

// fallbackSnapshot returns the diff baseline, or an empty snapshot when no
// poll ever succeeded. Empty tanks are unknown and trigger nothing.
func (s *Session) fallbackSnapshot() models.StatusSnapshot {
	if s.prev != nil {
		return *s.prev
	}
	return models.StatusSnapshot{}
}

func (s *Session) tickRuntime() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deriver.TickRuntime(s.prev, s.online)
}

func (s *Session) tickLift(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lift.Tick(dt)
}

func (s *Session) noteFailure(msg string) {
	s.mu.Lock()
	s.lastMsg = msg
	s.mu.Unlock()
	if s.log != nil {
		s.log.Warnw("command_failed", "msg", msg)
	}
}

func (s *Session) logEvent(ev EventItem) {
	if s.log == nil {
		return
	}
	switch ev.Level {
	case LevelCritical:
		s.log.Errorw("event", "text", ev.Text)
	case LevelWarn:
		s.log.Warnw("event", "text", ev.Text)
	default:
		s.log.Infow("event", "text", ev.Text)
	}
}

// ---- Accessors for the presentation layer ----

// Dispatcher returns the command dispatcher bound to this session.
func (s *Session) Dispatcher() *Dispatcher { return s.dispatcher }

// Snapshot returns the last successful snapshot, if any.
func (s *Session) Snapshot() (models.StatusSnapshot, bool) {
	return s.client.Snapshot()
}

// Online reports whether the most recent poll succeeded.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// HeartbeatOK reports the display-only freshness signal.
func (s *Session) HeartbeatOK() bool {
	return s.client.HeartbeatOK(s.cfg.PollInterval)
}

// Alarms returns the current ranked alarm list.
func (s *Session) Alarms() []AlarmItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AlarmItem, len(s.alarms))
	copy(out, s.alarms)
	return out
}

// Events returns the derived-event feed, newest first.
func (s *Session) Events() []EventItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Items()
}

// RuntimeStats returns a copy of the cumulative counters.
func (s *Session) RuntimeStats() RuntimeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriver.Stats()
}

// History returns the samples within the trailing window.
func (s *Session) History(window time.Duration) []HistorySample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Window(window, time.Now())
}

// LiftEstimate returns the dead-reckoned lift position.
func (s *Session) LiftEstimate() (mm float64, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lift.EstimateMM(), s.lift.Percent()
}

// ClientStats returns the status client's rolling counters.
func (s *Session) ClientStats() Stats {
	return s.client.Stats()
}

// LastFailureMessage returns the most recent user-facing command failure.
func (s *Session) LastFailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMsg
}
