package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	defaultCheckInterval  = 30 * time.Second
	defaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// GoroutineMonitor tracks goroutine metrics. Every scheduled game and every
// in-flight archive upload holds goroutines, so sustained growth after games
// complete points at a leak.
type GoroutineMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once

	clock  clockwork.Clock
	count  func() int
	logger zerolog.Logger
}

type Option func(*GoroutineMonitor)

func WithClock(c clockwork.Clock) Option {
	return func(gm *GoroutineMonitor) { gm.clock = c }
}

// WithCounter replaces runtime.NumGoroutine
func WithCounter(count func() int) Option {
	return func(gm *GoroutineMonitor) { gm.count = count }
}

func WithInterval(d time.Duration) Option {
	return func(gm *GoroutineMonitor) { gm.checkInterval = d }
}

func WithAlertThreshold(n int) Option {
	return func(gm *GoroutineMonitor) { gm.alertThreshold = n }
}

// NewGoroutineMonitor creates a new goroutine monitor
func NewGoroutineMonitor(logger zerolog.Logger, opts ...Option) *GoroutineMonitor {
	gm := &GoroutineMonitor{
		checkInterval:  defaultCheckInterval,
		alertThreshold: defaultAlertThreshold,
		alertCooldown:  defaultAlertCooldown,
		stopChan:       make(chan struct{}),
		clock:          clockwork.NewRealClock(),
		count:          runtime.NumGoroutine,
		logger:         logger.With().Str("component", "GoroutineMonitor").Logger(),
	}
	for _, opt := range opts {
		opt(gm)
	}
	gm.baseline = gm.count()
	gm.current, gm.peak = gm.baseline, gm.baseline
	return gm
}

// Start begins monitoring goroutines
func (gm *GoroutineMonitor) Start() {
	ticker := gm.clock.NewTicker(gm.checkInterval)
	go gm.monitor(ticker)
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
}

func (gm *GoroutineMonitor) monitor(ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			gm.Check()
		case <-gm.stopChan:
			return
		}
	}
}

// Check samples the goroutine count and warns when it crosses the threshold.
// It reports whether an alert was raised.
func (gm *GoroutineMonitor) Check() bool {
	current := gm.count()
	now := gm.clock.Now()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	shouldAlert := current > gm.alertThreshold &&
		(gm.lastAlert.IsZero() || now.Sub(gm.lastAlert) > gm.alertCooldown)
	if shouldAlert {
		gm.lastAlert = now
	}
	peak := gm.peak
	gm.mu.Unlock()

	gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate).
		Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// GetMetrics returns current goroutine metrics
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current  int `json:"current"`
	Baseline int `json:"baseline"`
	Peak     int `json:"peak"`
	Growth   int `json:"growth"`
}
