package presenter

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresenterBuilderOption is a functional option for configuring a Presenter.
type PresenterBuilderOption func(*presenter)

// WithLogger sets the logger used by the presenter.
//
// Parameters:
//   - logger: the slog logger
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) PresenterBuilderOption {
	return func(p *presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) PresenterBuilderOption {
	return func(p *presenter) {
		switch mode {
		case PresentModeUncapped:
			p.presentMode = wgpu.PresentModeImmediate
		default:
			p.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) PresenterBuilderOption {
	return func(p *presenter) {
		p.forceFallback = force
	}
}

// WithClearColor sets the color shown around the frame while the surface and frame sizes differ.
//
// Parameters:
//   - r, g, b: the color channels in [0, 1]
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithClearColor(r, g, b float64) PresenterBuilderOption {
	return func(p *presenter) {
		p.clear = wgpu.Color{R: r, G: g, B: b, A: 1}
	}
}
