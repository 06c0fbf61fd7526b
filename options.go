package wordvec

type options struct {
	logger  *Logger
	metrics MetricsCollector
}

// Option configures Builder and Index construction.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

// WithLogger sets the structured logger for operation tracing.
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector for monitoring.
// If nil is passed, metrics stay disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}
