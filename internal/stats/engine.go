package stats

import (
	"math"
	"sort"
	"sync"
)

// StreamGlobal identifies the global window in queries.
const StreamGlobal = "__global__"

// Config holds engine settings.
type Config struct {
	GlobalWindow int // Global window capacity (default 5000)
	MarketWindow int // Per-market window capacity (default 500)
	MinSamples   int // Observations required before z-scores are meaningful (default 10)
}

// DefaultConfig returns the standard window sizes.
func DefaultConfig() Config {
	return Config{
		GlobalWindow: 5000,
		MarketWindow: 500,
		MinSamples:   10,
	}
}

// Engine maintains the global window and one window per market.
type Engine struct {
	mu      sync.Mutex
	global  *window
	markets map[string]*window
	cfg     Config
}

// NewEngine creates an engine with the given window configuration.
// Zero-valued fields fall back to defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.GlobalWindow < 1 {
		cfg.GlobalWindow = def.GlobalWindow
	}
	if cfg.MarketWindow < 1 {
		cfg.MarketWindow = def.MarketWindow
	}
	if cfg.MinSamples < 2 {
		cfg.MinSamples = def.MinSamples
	}

	return &Engine{
		global:  newWindow(cfg.GlobalWindow),
		markets: make(map[string]*window),
		cfg:     cfg,
	}
}

// Observe appends value to the global window and to the market's
// window, creating the market window on first observation.
func (e *Engine) Observe(market string, value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.global.push(value)

	w, ok := e.markets[market]
	if !ok {
		w = newWindow(e.cfg.MarketWindow)
		e.markets[market] = w
	}
	w.push(value)
}

// ZScore returns how many standard deviations value sits from the
// stream's mean. Returns 0 when the window holds fewer than MinSamples
// observations or when the window is degenerate (zero variance).
func (e *Engine) ZScore(stream string, value float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.windowLocked(stream)
	if w == nil || w.len() < e.cfg.MinSamples {
		return 0
	}

	mean, variance := w.moments()
	if variance == 0 {
		return 0
	}

	return (value - mean) / math.Sqrt(variance)
}

// Percentile returns value's rank in the stream's window on a 0-100
// scale: 100 * (index of first element >= value) / length over the
// ascending-sorted contents. An empty or missing window returns 50.
func (e *Engine) Percentile(stream string, value float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.windowLocked(stream)
	if w == nil || w.len() == 0 {
		return 50
	}

	vals := w.snapshot()
	sort.Float64s(vals)

	rank := sort.SearchFloat64s(vals, value)
	return 100 * float64(rank) / float64(len(vals))
}

// Len returns the number of observations in the stream's window.
func (e *Engine) Len(stream string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.windowLocked(stream)
	if w == nil {
		return 0
	}
	return w.len()
}

// MarketCount returns the number of per-market windows created so far.
func (e *Engine) MarketCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.markets)
}

// windowLocked resolves a stream key. Must be called with the lock held.
func (e *Engine) windowLocked(stream string) *window {
	if stream == StreamGlobal {
		return e.global
	}
	return e.markets[stream]
}
