package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/whiteboard-go/config"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/geometry"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
	"github.com/Carmen-Shannon/whiteboard-go/engine/provider"
	"github.com/Carmen-Shannon/whiteboard-go/engine/renderer"
	"github.com/Carmen-Shannon/whiteboard-go/engine/viewport"
)

const exportLockName = ".export.lock"

// errExportBusy is returned when another process holds the export directory lock.
var errExportBusy = errors.New("export directory is locked by another render")

type renderOptions struct {
	step     int
	progress float64
	width    int
	height   int
	zoom     float64
	output   string
	wait     time.Duration
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	opts := renderOptions{step: -1, progress: 1}

	cmd := &cobra.Command{
		Use:   "render <plan>",
		Short: "Render one frame of a plan to a PNG file",
		Long: "Render paints a plan without opening a window. With no --step the finished board is drawn;\n" +
			"otherwise the given step is drawn at --progress with every earlier step complete.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			p, _, err := ctx.loadPlan(cmd, joinArgs(args))
			if err != nil {
				return err
			}

			target := opts.output
			if target == "" {
				target = filepath.Join(cfg.Export.Dir, exportName(joinArgs(args)))
			}
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			if err := renderToFile(runCtx, cfg, logger, p, opts, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.step, "step", "s", -1, "Step to draw; negative draws the finished board")
	cmd.Flags().Float64VarP(&opts.progress, "progress", "p", 1, "Progress of the step in [0, 1]")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Image width (defaults to export.width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Image height (defaults to export.height)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 1, "Camera zoom in pixels per board unit")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (defaults to a new file in export.dir)")
	cmd.Flags().DurationVar(&opts.wait, "lock-wait", 5*time.Second, "How long to wait for the export directory lock")
	return cmd
}

func exportName(prompt string) string {
	slug := provider.Slug(filepath.Base(prompt))
	if slug == "" {
		slug = "board"
	}
	return slug + "-" + uuid.NewString()[:8] + ".png"
}

// renderToFile paints one frame of p and writes it to target while holding the lock on
// target's directory.
func renderToFile(ctx context.Context, cfg *config.Config, logger *slog.Logger, p *plan.WhiteboardPlan, opts renderOptions, target string) error {
	if opts.step >= p.Len() {
		return fmt.Errorf("step %d out of range (plan has %d steps)", opts.step, p.Len())
	}
	width, height := opts.width, opts.height
	if width <= 0 {
		width = cfg.Export.Width
	}
	if height <= 0 {
		height = cfg.Export.Height
	}

	resolved, warnings := geometry.Resolve(p)
	for _, w := range warnings {
		logger.Warn("geometry fallback", "component", "render", "warning", w.String())
	}

	r := renderer.NewRenderer(
		renderer.WithLogger(logger),
		renderer.WithDrawingWindow(cfg.Render.DrawingWindow),
		renderer.WithColors(cfg.Colors()),
		renderer.WithLineWidth(cfg.Render.LineWidth),
		renderer.WithMarkerRadius(cfg.Render.MarkerRadius),
		renderer.WithFontSize(cfg.Render.FontSize),
		renderer.WithContextualOpacity(cfg.Render.ContextualOpacity),
		renderer.WithNearBlackLuminance(cfg.Render.NearBlackLuminance),
	)
	r.SetPlan(resolved)

	focus := opts.step
	if focus < 0 {
		focus = resolved.Len() - 1
	}
	vp := viewport.NewViewport(
		viewport.WithSize(width, height),
		viewport.WithZoomBounds(cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom),
		viewport.WithZoom(opts.zoom),
	)
	vp.Focus(viewport.Focal{Point: resolved.Steps[focus].Origin, Step: focus})

	raster := canvas.NewRaster(width, height)
	if opts.step < 0 {
		r.DrawComplete(raster, vp.Transform(), 0)
	} else {
		d := playback.HeuristicDuration(&resolved.Steps[opts.step]).Seconds()
		r.Draw(raster, vp.Transform(), renderer.FrameAt(opts.step, opts.progress, d, opts.progress*d))
	}

	unlock, err := lockExportDir(ctx, filepath.Dir(target), opts.wait)
	if err != nil {
		return err
	}
	defer unlock()

	if err := raster.SavePNG(target); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	logger.Info("frame exported", "component", "render", "path", target, "step", opts.step, "width", width, "height", height)
	return nil
}

func lockExportDir(ctx context.Context, dir string, wait time.Duration) (func(), error) {
	f, err := createFile(filepath.Join(dir, exportLockName))
	if err != nil {
		return nil, err
	}
	f.Close()

	lock := flock.New(filepath.Join(dir, exportLockName))
	if wait <= 0 {
		wait = time.Millisecond
	}
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	ok, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, errExportBusy)
	}
	return func() { _ = lock.Unlock() }, nil
}
