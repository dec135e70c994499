package monitoring

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultCheckInterval  = 30 * time.Second
	defaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// Gauge reports the current size of a component, such as the number of
// live games or connected viewers
type Gauge func() int

// Options configures a Monitor. Zero values use the defaults.
type Options struct {
	CheckInterval  time.Duration
	AlertThreshold int
	AlertCooldown  time.Duration
	Logger         zerolog.Logger
}

// Monitor samples the goroutine count alongside registered component gauges
// and warns when goroutines pile up. Games and their watch streams each hold
// goroutines, so a count that keeps climbing while the gauges stay flat
// points at a leak.
type Monitor struct {
	mu             sync.RWMutex
	logger         zerolog.Logger
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration

	gauges     map[string]Gauge
	lastCounts map[string]int

	numGoroutine func() int
	now          func() time.Time
}

// NewMonitor creates a monitor with the current goroutine count as baseline
func NewMonitor(opts Options) *Monitor {
	m := &Monitor{
		logger:         opts.Logger.With().Str("component", "monitor").Logger(),
		checkInterval:  opts.CheckInterval,
		alertThreshold: opts.AlertThreshold,
		alertCooldown:  opts.AlertCooldown,
		gauges:         make(map[string]Gauge),
		lastCounts:     make(map[string]int),
		numGoroutine:   runtime.NumGoroutine,
		now:            time.Now,
	}
	if m.checkInterval <= 0 {
		m.checkInterval = defaultCheckInterval
	}
	if m.alertThreshold <= 0 {
		m.alertThreshold = defaultAlertThreshold
	}
	if m.alertCooldown <= 0 {
		m.alertCooldown = defaultAlertCooldown
	}
	m.baseline = m.numGoroutine()
	m.current, m.peak = m.baseline, m.baseline
	return m
}

// Register adds a named gauge sampled on every check
func (m *Monitor) Register(name string, g Gauge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = g
}

// Run samples until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info().
		Int("baseline", m.baseline).
		Dur("interval", m.checkInterval).
		Msg("Started goroutine monitoring")

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check takes one sample and logs it, warning at most once per cooldown
// when the goroutine count is above the threshold
func (m *Monitor) Check() Metrics {
	current := m.numGoroutine()

	m.mu.Lock()
	gauges := make(map[string]Gauge, len(m.gauges))
	for name, g := range m.gauges {
		gauges[name] = g
	}
	m.mu.Unlock()

	// gauges may take other locks; sample them unlocked
	counts := make(map[string]int, len(gauges))
	for name, g := range gauges {
		counts[name] = g()
	}

	now := m.now()
	m.mu.Lock()
	m.current = current
	if current > m.peak {
		m.peak = current
	}
	m.lastCounts = counts
	shouldAlert := current > m.alertThreshold && now.Sub(m.lastAlert) > m.alertCooldown
	if shouldAlert {
		m.lastAlert = now
	}
	metrics := m.metricsLocked()
	m.mu.Unlock()

	growthRate := 0.0
	if m.baseline > 0 {
		growthRate = float64(metrics.Growth) / float64(m.baseline) * 100
	}

	event := m.logger.Debug().
		Int("current", metrics.Current).
		Int("baseline", metrics.Baseline).
		Int("peak", metrics.Peak).
		Float64("growth_rate", growthRate)
	for _, name := range sortedKeys(counts) {
		event = event.Int(name, counts[name])
	}
	event.Msg("Goroutine metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("current", current).
			Int("threshold", m.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return metrics
}

// Metrics returns the last sample
func (m *Monitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metricsLocked()
}

func (m *Monitor) metricsLocked() Metrics {
	counts := make(map[string]int, len(m.lastCounts))
	for k, v := range m.lastCounts {
		counts[k] = v
	}
	return Metrics{
		Current:         m.current,
		Baseline:        m.baseline,
		Peak:            m.peak,
		Growth:          m.current - m.baseline,
		ComponentCounts: counts,
	}
}

// Metrics contains goroutine statistics
type Metrics struct {
	Current         int            `json:"current"`
	Baseline        int            `json:"baseline"`
	Peak            int            `json:"peak"`
	Growth          int            `json:"growth"`
	ComponentCounts map[string]int `json:"component_counts"`
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
