package huddle

// Option configures a Coordinator with optional dependencies.
type Option func(*coordinatorOptions)

// coordinatorOptions holds optional Coordinator configuration.
type coordinatorOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	clock   Clock
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &huddle.Hooks{
//	    OnForceLogout: func(ctx context.Context, userID string) error {
//	        return auditLog(ctx, userID)
//	    },
//	}
//	coord, err := huddle.New(&cfg, src, huddle.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *coordinatorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := myPrometheusCollector
//	coord, err := huddle.New(&cfg, src, huddle.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *coordinatorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := zapLogger.Sugar()
//	coord, err := huddle.New(&cfg, src, huddle.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *coordinatorOptions) {
		o.logger = logger
	}
}

// WithClock sets the clock used for liveness timestamps and sweep decisions.
//
// Production code uses the system clock; tests inject a manual clock to
// simulate time instead of sleeping.
//
// Parameters:
//   - clock: Clock implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	clock := huddletesting.NewClock(time.Unix(0, 0))
//	coord, err := huddle.New(&cfg, src, huddle.WithClock(clock))
func WithClock(clock Clock) Option {
	return func(o *coordinatorOptions) {
		o.clock = clock
	}
}
