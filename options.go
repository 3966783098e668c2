package acorn

import "go.uber.org/zap"

// Option configures an [Injector] at construction time.
type Option func(*Injector)

// WithLogger sets the logger used for selection and invalidation events.
// The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(inj *Injector) {
		if l != nil {
			inj.log = l
		}
	}
}

// WithMetrics attaches a [Metrics] collector. Without it nothing is counted.
func WithMetrics(m *Metrics) Option {
	return func(inj *Injector) {
		inj.metrics = m
	}
}
