package audio

import (
	"log/slog"
	"time"
)

// PipelineBuilderOption is a functional option applied to a pipeline during construction via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithLogger sets the logger used for decode diagnostics.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - PipelineBuilderOption: a function that applies the logger option to a pipeline
func WithLogger(logger *slog.Logger) PipelineBuilderOption {
	return func(p *pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWorkers sets the number of decode workers. One worker keeps decodes in step order.
//
// Parameters:
//   - n: the worker count; values below 1 keep the default of 1
//
// Returns:
//   - PipelineBuilderOption: a function that applies the worker option to a pipeline
func WithWorkers(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithQueueSize sets how many decodes may wait for a worker.
func WithQueueSize(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		if n >= 1 {
			p.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle worker lives before exiting.
func WithIdleTimeout(d time.Duration) PipelineBuilderOption {
	return func(p *pipeline) {
		if d > 0 {
			p.idle = d
		}
	}
}

// WithDecoder replaces the decode function, mainly for tests.
func WithDecoder(fn func(DecodeRequest) DecodeResult) PipelineBuilderOption {
	return func(p *pipeline) {
		if fn != nil {
			p.decode = fn
		}
	}
}
