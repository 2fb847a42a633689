package scene

import (
	"log/slog"
	"time"
)

const (
	defaultMaxDelta    = 0.1
	defaultFrameBudget = 16600 * time.Microsecond
	defaultMaxFaults   = 32
)

// Option configures a [Manager].
type Option func(*config)

type config struct {
	logger      *slog.Logger
	registry    *Registry
	maxDelta    float64
	frameBudget time.Duration
	maxFaults   int
	now         func() time.Time
}

func defaultConfig() config {
	return config{
		logger:      slog.Default(),
		maxDelta:    defaultMaxDelta,
		frameBudget: defaultFrameBudget,
		maxFaults:   defaultMaxFaults,
		now:         time.Now,
	}
}

// WithLogger sets the logger for faults and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegistry sets the registry used by [Manager.AddFactory].
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithMaxDelta sets the upper clamp for tick dt in seconds.
func WithMaxDelta(seconds float64) Option {
	return func(c *config) {
		if seconds > 0 {
			c.maxDelta = seconds
		}
	}
}

// WithFrameBudget sets the tick duration above which a tick counts as an
// overrun.
func WithFrameBudget(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.frameBudget = d
		}
	}
}

// WithMaxFaults bounds the fault history kept by the manager.
func WithMaxFaults(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxFaults = n
		}
	}
}

// WithClock replaces the wall clock used to measure tick duration.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
