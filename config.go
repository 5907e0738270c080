package boundsx

import (
	"errors"
	"fmt"
	"time"
)

// Defaults used when a Config field is left zero.
const (
	DefaultHistoryLimit    = 6
	DefaultRetryBudget     = 8
	DefaultProgressBuckets = 20
	DefaultTickRate        = 16667 * time.Microsecond // 60 FPS
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the tunable constants of the engine and the capture runtime.
type Config struct {
	// HistoryLimit bounds the number of links kept per tag.
	HistoryLimit int `json:"historyLimit" yaml:"historyLimit" toml:"history_limit"`
	// RetryBudget bounds destination capture attempts per navigation.
	RetryBudget int `json:"retryBudget" yaml:"retryBudget" toml:"retry_budget"`
	// ProgressBuckets splits animation progress [0,1] into coarse buckets;
	// a retry is attempted at most once per bucket.
	ProgressBuckets int `json:"progressBuckets" yaml:"progressBuckets" toml:"progress_buckets"`
	// TickRate is the frame interval of the ticker-driven runtime loop.
	TickRate Duration `json:"tickRate" yaml:"tickRate" toml:"tick_rate"`
}

// DefaultConfig returns the configuration used by NewEngine without options.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:    DefaultHistoryLimit,
		RetryBudget:     DefaultRetryBudget,
		ProgressBuckets: DefaultProgressBuckets,
		TickRate:        Duration(DefaultTickRate),
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.HistoryLimit == 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.RetryBudget == 0 {
		c.RetryBudget = d.RetryBudget
	}
	if c.ProgressBuckets == 0 {
		c.ProgressBuckets = d.ProgressBuckets
	}
	if c.TickRate == 0 {
		c.TickRate = d.TickRate
	}
	return c
}

// Validate checks the configuration:
// - HistoryLimit of at least 2 so a completed link survives one retarget
// - non-negative RetryBudget
// - positive ProgressBuckets and TickRate
func (c Config) Validate() error {
	if c.HistoryLimit < 2 {
		return fmt.Errorf("%w: historyLimit must be >= 2, got %d", ErrInvalidConfig, c.HistoryLimit)
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("%w: retryBudget must be >= 0, got %d", ErrInvalidConfig, c.RetryBudget)
	}
	if c.ProgressBuckets < 1 {
		return fmt.Errorf("%w: progressBuckets must be >= 1, got %d", ErrInvalidConfig, c.ProgressBuckets)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tickRate must be positive, got %s", ErrInvalidConfig, time.Duration(c.TickRate))
	}
	return nil
}

// Duration is a time.Duration that decodes from strings such as "16ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}
