package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger used for diagnostics.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDrawingWindow sets the fraction of each step shared by items without explicit timing.
//
// Parameters:
//   - fraction: a value in (0, 1]; other values keep the default of 0.4
//
// Returns:
//   - RendererBuilderOption: a function that applies the drawing window option to a renderer
func WithDrawingWindow(fraction float64) RendererBuilderOption {
	return func(r *renderer) {
		if fraction > 0 && fraction <= 1 {
			r.drawingWindow = fraction
		}
	}
}

// WithColors sets the board background, the default foreground that replaces near-black item
// colors, and the highlight halo color.
//
// Parameters:
//   - background: the board color
//   - foreground: the default item color
//   - highlight: the halo color for highlighted items
//
// Returns:
//   - RendererBuilderOption: a function that applies the color option to a renderer
func WithColors(background, foreground, highlight common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.background = background
		r.foreground = foreground
		r.highlight = highlight
	}
}

// WithLineWidth sets the default stroke width in board units.
func WithLineWidth(w float64) RendererBuilderOption {
	return func(r *renderer) {
		if w > 0 {
			r.lineWidth = w
		}
	}
}

// WithMarkerRadius sets the radius at or below which circles are drawn as scale-in markers.
func WithMarkerRadius(radius float64) RendererBuilderOption {
	return func(r *renderer) {
		if radius >= 0 {
			r.markerRadius = radius
		}
	}
}

// WithFontSize sets the default label size in board units.
func WithFontSize(size float64) RendererBuilderOption {
	return func(r *renderer) {
		if size > 0 {
			r.fontSize = size
		}
	}
}

// WithContextualOpacity sets the opacity of labels flagged as contextual.
func WithContextualOpacity(a float64) RendererBuilderOption {
	return func(r *renderer) {
		r.contextualOpacity = common.Clamp01(a)
	}
}

// WithNearBlackLuminance sets the luminance below which item colors are replaced by the foreground.
func WithNearBlackLuminance(threshold float64) RendererBuilderOption {
	return func(r *renderer) {
		r.nearBlack = common.Clamp01(threshold)
	}
}
