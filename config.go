package huddle

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// Timing Configuration Model
// ============================================================================
//
// Presence uses two durations that together define the liveness window:
//
//   - SweepInterval: how often the background sweep scans for stale users.
//     Eviction happens on the next sweep tick after expiry, never
//     instantaneously.
//   - LivenessTimeout: how long a user may stay silent before the sweep
//     evicts them. Any heartbeat resets the window.
//
// Execution flow example (defaults):
//
//	T+0s:   heartbeat(alice)           (window ends at T+10s)
//	T+5s:   sweep tick -> alice fresh
//	T+10s:  window expires (no tick yet, alice still present)
//	T+11s:  sweep tick -> alice evicted, FORCE_LOGOUT published
//
// Constraint: LivenessTimeout >= 2*SweepInterval, so a user always survives
// at least one full sweep cycle between heartbeats.
//
// ============================================================================

// Config is the configuration for the Coordinator.
//
// All duration fields accept standard Go duration strings like "500ms",
// "10s" when unmarshalled from YAML.
type Config struct {
	// SweepInterval is how often the background sweep scans the presence
	// registry for stale users.
	// Recommended: 1 second.
	SweepInterval time.Duration `yaml:"sweepInterval"`

	// LivenessTimeout is how long a user may go without a heartbeat before
	// the sweep force-logs them out and clears their claims.
	// Must be at least 2x SweepInterval.
	// Recommended: 10 seconds.
	LivenessTimeout time.Duration `yaml:"livenessTimeout"`

	// SubscriberBuffer is the per-subscriber event queue capacity on the
	// bus. A subscriber that falls further behind than this starts losing
	// events; the publisher is never blocked.
	SubscriberBuffer int `yaml:"subscriberBuffer"`

	// ShutdownTimeout is the maximum time Stop waits for the sweep loop and
	// hook goroutines to finish.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		SweepInterval:    1 * time.Second,
		LivenessTimeout:  10 * time.Second,
		SubscriberBuffer: 256,
		ShutdownTimeout:  10 * time.Second,
	}
}

// ApplyDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func ApplyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.LivenessTimeout == 0 {
		cfg.LivenessTimeout = defaults.LivenessTimeout
	}
	if cfg.SubscriberBuffer == 0 {
		cfg.SubscriberBuffer = defaults.SubscriberBuffer
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - SweepInterval > 0
//   - LivenessTimeout >= 2*SweepInterval (survive one full sweep cycle)
//   - SubscriberBuffer > 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SweepInterval must be > 0, got %v", cfg.SweepInterval)
	}

	if cfg.LivenessTimeout < 2*cfg.SweepInterval {
		return fmt.Errorf(
			"LivenessTimeout (%v) must be >= 2*SweepInterval (%v) so a user survives a full sweep cycle",
			cfg.LivenessTimeout, cfg.SweepInterval,
		)
	}

	if cfg.SubscriberBuffer <= 0 {
		return fmt.Errorf("SubscriberBuffer must be > 0, got %d", cfg.SubscriberBuffer)
	}

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
//
// Duration fields are parsed from Go duration strings ("500ms", "10s")
// rather than raw nanosecond integers.
func (cfg *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SweepInterval    string `yaml:"sweepInterval"`
		LivenessTimeout  string `yaml:"livenessTimeout"`
		SubscriberBuffer int    `yaml:"subscriberBuffer"`
		ShutdownTimeout  string `yaml:"shutdownTimeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parse := func(field, s string, dst *time.Duration) error {
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
		*dst = d

		return nil
	}

	if err := parse("sweepInterval", raw.SweepInterval, &cfg.SweepInterval); err != nil {
		return err
	}
	if err := parse("livenessTimeout", raw.LivenessTimeout, &cfg.LivenessTimeout); err != nil {
		return err
	}
	if err := parse("shutdownTimeout", raw.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	cfg.SubscriberBuffer = raw.SubscriberBuffer

	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting duration strings.
func (cfg Config) MarshalYAML() (any, error) {
	return struct {
		SweepInterval    string `yaml:"sweepInterval"`
		LivenessTimeout  string `yaml:"livenessTimeout"`
		SubscriberBuffer int    `yaml:"subscriberBuffer"`
		ShutdownTimeout  string `yaml:"shutdownTimeout"`
	}{
		SweepInterval:    cfg.SweepInterval.String(),
		LivenessTimeout:  cfg.LivenessTimeout.String(),
		SubscriberBuffer: cfg.SubscriberBuffer,
		ShutdownTimeout:  cfg.ShutdownTimeout.String(),
	}, nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// This is called after Validate() in New() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.LivenessTimeout < 3*cfg.SweepInterval {
		logger.Warn(
			"LivenessTimeout is below the recommended minimum; a single delayed heartbeat may cause eviction",
			"livenessTimeout", cfg.LivenessTimeout,
			"sweepInterval", cfg.SweepInterval,
			"recommended", 3*cfg.SweepInterval,
		)
	}

	if cfg.SubscriberBuffer < 16 {
		logger.Warn(
			"SubscriberBuffer is very small, slow subscribers will drop events",
			"subscriberBuffer", cfg.SubscriberBuffer,
			"recommended", "16 or higher",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable rapid
// iteration without sacrificing coverage. Use DefaultConfig() for
// production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.SweepInterval = 10 * time.Millisecond   // 100x faster
	cfg.LivenessTimeout = 50 * time.Millisecond // 200x faster
	cfg.ShutdownTimeout = 1 * time.Second

	return cfg
}
