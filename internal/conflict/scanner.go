package conflict

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrScannerStopped = errors.New("conflict: scanner stopped")

// Source is the external overlap query: every scheduled root occurrence whose
// interval intersects [start, end).
type Source interface {
	Overlapping(ctx context.Context, start, end time.Time) ([]RootInterval, error)
}

// Event is one live conflict group surfaced to the caller.
type Event struct {
	Group      Group
	DetectedAt time.Time
}

// ScannerConfig tunes the detection loop.
type ScannerConfig struct {
	// Interval between scans.
	Interval time.Duration
	// Window is how far ahead of now the overlap query looks.
	Window time.Duration
	// Cooldown suppresses re-prompting for a group after it was resolved.
	Cooldown time.Duration
	// Buffer sizes the outbound event channel.
	Buffer int
}

func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Interval: 2 * time.Second,
		Window:   24 * time.Hour,
		Cooldown: 5 * time.Minute,
		Buffer:   8,
	}
}

// Scanner periodically queries the source and emits at most one live,
// non-cooled-down conflict group per scan. Emission is non-blocking: if the
// consumer lags, events are dropped and counted rather than stalling scans.
type Scanner struct {
	mu      sync.Mutex
	source  Source
	cfg     ScannerConfig
	ledger  *CooldownLedger
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
	lastErr atomic.Value
}

func NewScanner(source Source, cfg ScannerConfig) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultScannerConfig().Interval
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultScannerConfig().Window
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	return &Scanner{
		source: source,
		cfg:    cfg,
		ledger: NewCooldownLedger(cfg.Cooldown),
		out:    make(chan Event, cfg.Buffer),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (s *Scanner) C() <-chan Event {
	return s.out
}

func (s *Scanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.loop()
}

func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Poke forces a scan ahead of the next tick, typically after a scheduling
// mutation.
func (s *Scanner) Poke() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// Resolve records that the group was handled and starts its cooldown.
func (s *Scanner) Resolve(g Group, now time.Time) {
	s.ledger.MarkResolved(g, now)
	s.Poke()
}

func (s *Scanner) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// LastError returns the most recent scan failure, if any. Scan failures do
// not stop the loop; the next tick retries.
func (s *Scanner) LastError() error {
	if v := s.lastErr.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

func (s *Scanner) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scan(time.Now().UTC())
		case <-s.wakeup:
			s.scan(time.Now().UTC())
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scanner) scan(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Interval)
	defer cancel()

	roots, err := s.source.Overlapping(ctx, now, now.Add(s.cfg.Window))
	if err != nil {
		s.lastErr.Store(err)
		return
	}
	for _, g := range LiveGroups(BuildGroups(roots), now) {
		if s.ledger.Suppressed(g, now) {
			continue
		}
		ev := Event{Group: g, DetectedAt: now}
		select {
		case s.out <- ev:
		default:
			atomic.AddUint64(&s.dropped, 1)
		}
		// One prompt at a time; the rest surface on later scans.
		return
	}
}
