package meshrecon

import (
	"log/slog"

	"github.com/hupe1980/meshrecon/config"
	"github.com/hupe1980/meshrecon/reconstruction"
	"github.com/hupe1980/meshrecon/search"
)

type options struct {
	config           *config.Config
	tree             search.Tree
	palette          []reconstruction.RGB
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Reconstruct.
type Option func(*options)

// WithConfig sets the reconstruction parameters.
//
// If nil is passed, config.Default is used.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg == nil {
			cfg = config.Default()
		}
		o.config = cfg
	}
}

// WithSearchTree sets the nearest neighbor oracle over the input points.
// By default a k-d tree is built.
//
// Example with brute force search for small clouds:
//
//	res, _ := meshrecon.Reconstruct(ctx, buf,
//	    meshrecon.WithSearchTree(search.NewFlat(buf.Points)))
func WithSearchTree(tree search.Tree) Option {
	return func(o *options) {
		o.tree = tree
	}
}

// WithPalette sets the colors assigned to planar clusters.
// An empty palette keeps algorithm.DefaultPalette.
func WithPalette(palette []reconstruction.RGB) Option {
	return func(o *options) {
		o.palette = palette
	}
}

// WithMetricsCollector configures a metrics collector for monitoring stages.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &meshrecon.BasicMetricsCollector{}
//	res, _ := meshrecon.Reconstruct(ctx, buf, meshrecon.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Polygonize avg: %dns\n", stats.StageAvgNanos[meshrecon.StagePolygonize])
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for the pipeline.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := meshrecon.NewJSONLogger(slog.LevelInfo)
//	res, _ := meshrecon.Reconstruct(ctx, buf, meshrecon.WithLogger(logger))
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

func applyOptions(optFns []Option) options {
	o := options{
		config:           config.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
