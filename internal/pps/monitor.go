package pps

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Nominal is the expected spacing of 1PPS edges.
const Nominal = time.Second

type Config struct {
	Enable bool
	// Chip is a gpiochip name or path, e.g. "gpiochip0".
	Chip     string
	Line     int
	Consumer string
}

type Snapshot struct {
	Enabled bool   `json:"enabled"`
	Chip    string `json:"chip,omitempty"`
	Line    int    `json:"line"`

	Edges    uint64        `json:"edges"`
	Missed   uint64        `json:"missed"`
	LastEdge time.Time     `json:"last_edge,omitempty"`
	Interval time.Duration `json:"interval_ns,omitempty"`
	// Jitter is the deviation of the last interval from Nominal; MaxJitter
	// is the largest magnitude seen since Start.
	Jitter    time.Duration `json:"jitter_ns"`
	MaxJitter time.Duration `json:"max_jitter_ns"`

	LastError string `json:"last_error,omitempty"`
}

// edgeSource delivers rising-edge timestamps (kernel monotonic clock) to fn
// until the returned closer is closed.
type edgeSource func(chip string, line int, consumer string, fn func(ts time.Duration)) (io.Closer, error)

var requestEdgesFn edgeSource = requestEdges

// Monitor counts 1PPS edges on one GPIO line and keeps interval statistics.
type Monitor struct {
	cfg Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu sync.Mutex
	tr tracker
	// now is the wall clock stamped on each edge.
	now func() time.Time
}

func New(cfg Config) *Monitor {
	cfg.Chip = strings.TrimSpace(cfg.Chip)
	if cfg.Consumer == "" {
		cfg.Consumer = "chronolink-pps"
	}
	m := &Monitor{cfg: cfg, now: time.Now}
	m.last.Store(Snapshot{Enabled: cfg.Enable, Chip: cfg.Chip, Line: cfg.Line})
	return m
}

func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return fmt.Errorf("pps monitor is nil")
	}
	if !m.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return nil
	}

	src, err := requestEdgesFn(m.cfg.Chip, m.cfg.Line, m.cfg.Consumer, m.onEdge)
	if err != nil {
		m.setErrorLocked(fmt.Sprintf("pps request failed chip=%s line=%d: %v", m.cfg.Chip, m.cfg.Line, err))
		return err
	}

	childCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		<-childCtx.Done()
		if err := src.Close(); err != nil {
			m.setError(fmt.Sprintf("pps release: %v", err))
		}
	}()
	return nil
}

func (m *Monitor) onEdge(ts time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tr.observe(ts)
	cur := m.snapshotLocked()
	cur.LastEdge = m.now().UTC()
	m.last.Store(cur)
}

func (m *Monitor) snapshotLocked() Snapshot {
	cur := m.Snapshot()
	cur.Edges = m.tr.edges
	cur.Missed = m.tr.missed
	cur.Interval = m.tr.interval
	cur.Jitter = m.tr.jitter
	cur.MaxJitter = m.tr.maxJitter
	return cur
}

func (m *Monitor) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	v := m.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

func (m *Monitor) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErrorLocked(msg)
}

func (m *Monitor) setErrorLocked(msg string) {
	cur := m.Snapshot()
	cur.LastError = msg
	m.last.Store(cur)
}

// tracker accumulates edge statistics from monotonic timestamps.
type tracker struct {
	edges     uint64
	missed    uint64
	prev      time.Duration
	interval  time.Duration
	jitter    time.Duration
	maxJitter time.Duration
}

func (tr *tracker) observe(ts time.Duration) {
	tr.edges++
	if tr.edges == 1 {
		tr.prev = ts
		return
	}
	d := ts - tr.prev
	tr.prev = ts
	if d <= 0 {
		return
	}
	// Gaps of n seconds (rounded) mean n-1 pulses never arrived. Jitter is
	// measured against the nearest whole number of periods.
	periods := (d + Nominal/2) / Nominal
	if periods < 1 {
		periods = 1
	}
	tr.missed += uint64(periods - 1)
	tr.interval = d
	tr.jitter = d - periods*Nominal
	if a := abs(tr.jitter); a > tr.maxJitter {
		tr.maxJitter = a
	}
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
