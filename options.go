package hikmeans

import (
	"log/slog"

	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/persistence"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	progress         ProgressFunc
	maxIterations    int
	verbosity        int
	modelFactory     ModelFactory
	seed             int64
	concurrency      int
	memoryLimit      int64
	ioLimit          int64
	fillPolicy       FillPolicy
	compression      persistence.CompressionType
}

// Option configures Tree construction and loading.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hikmeans.BasicMetricsCollector{}
//	tree := hikmeans.New(ikmeans.Lloyd, hikmeans.WithMetricsCollector(metrics))
//	// ... train and push ...
//	stats := metrics.GetStats()
//	fmt.Printf("Pushes: %d, Avg latency: %dns\n", stats.PushCount, stats.PushAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hikmeans.NewJSONLogger(slog.LevelInfo)
//	tree := hikmeans.New(ikmeans.Lloyd, hikmeans.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithProgress registers a callback invoked each time a branch below an
// internal node finishes training. It must not block.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithMaxIterations sets the per-node training iteration cap.
// Default: ikmeans.DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = max(n, 0)
	}
}

// WithVerbosity sets the verbosity. Progress of a node at level d is logged
// when verbosity > d, and each node model gets a verbosity reduced by one
// per level.
func WithVerbosity(v int) Option {
	return func(o *options) {
		o.verbosity = v
	}
}

// WithModelFactory replaces the clustering primitive used for every node.
func WithModelFactory(f ModelFactory) Option {
	return func(o *options) {
		o.modelFactory = f
	}
}

// WithSeed seeds center initialization of the default model factory.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithConcurrency sets how many goroutines may build sibling subtrees and
// push vector chunks in parallel. Values <= 1 keep everything sequential.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMemoryLimit bounds the scratch memory held by training subsets.
// Training fails with ErrResourceExhausted instead of exceeding it.
// Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit bounds the throughput of Save and Load streams in bytes per
// second. Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithFillPolicy selects how path code slots below an early leaf are filled.
// Default: FillSentinel.
func WithFillPolicy(p FillPolicy) Option {
	return func(o *options) {
		o.fillPolicy = p
	}
}

// WithCompression selects the body compression used by WriteTo and Save.
// Default: persistence.CompressionNone.
func WithCompression(ct persistence.CompressionType) Option {
	return func(o *options) {
		o.compression = ct
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		maxIterations:    ikmeans.DefaultMaxIterations,
		seed:             ikmeans.DefaultSeed,
		concurrency:      1,
		fillPolicy:       FillSentinel,
		compression:      persistence.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.modelFactory == nil {
		o.modelFactory = DefaultModelFactory(o.seed, o.logger)
	}
	return o
}
