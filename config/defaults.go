package config

const (
	defaultWindowTitle        = "Whiteboard"
	defaultWindowWidth        = 1280
	defaultWindowHeight       = 720
	defaultWindowMinWidth     = 480
	defaultWindowMinHeight    = 320
	defaultTickRate           = 30
	defaultFullFrameRate      = 60
	defaultReducedFrameRate   = 20
	defaultBreathingMS        = 375
	defaultAudioTimeoutSecs   = 8
	defaultSampleRate         = 24000
	defaultChannels           = 1
	defaultDecodeWorkers      = 1
	defaultDecodeQueue        = 64
	defaultMinZoom            = 0.1
	defaultMaxZoom            = 8
	defaultZoomSpeed          = 0.1
	defaultSmoothing          = 4
	defaultTouchSmoothing     = 9
	defaultSmallScreenPx      = 640
	defaultDrawingWindow      = 0.4
	defaultLineWidth          = 3
	defaultFontSize           = 20
	defaultMarkerRadius       = 4
	defaultContextualOpacity  = 0.45
	defaultNearBlackLuminance = 0.12
	defaultBackground         = "#121418"
	defaultForeground         = "#F5F5F0"
	defaultHighlight          = "#FFD54F"
	defaultLibraryDir         = "~/.local/share/whiteboard/plans"
	defaultExportDir          = "~/.local/share/whiteboard/exports"
	defaultExportWidth        = 1280
	defaultExportHeight       = 720
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Window: Window{
			Title:     defaultWindowTitle,
			Width:     defaultWindowWidth,
			Height:    defaultWindowHeight,
			MinWidth:  defaultWindowMinWidth,
			MinHeight: defaultWindowMinHeight,
			VSync:     true,
		},
		Engine: Engine{
			TickRate:         defaultTickRate,
			FullFrameRate:    defaultFullFrameRate,
			ReducedFrameRate: defaultReducedFrameRate,
		},
		Playback: Playback{
			BreathingMS:         defaultBreathingMS,
			AudioTimeoutSeconds: defaultAudioTimeoutSecs,
		},
		Audio: Audio{
			Enabled:       true,
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			DecodeWorkers: defaultDecodeWorkers,
			DecodeQueue:   defaultDecodeQueue,
		},
		Viewport: Viewport{
			MinZoom:        defaultMinZoom,
			MaxZoom:        defaultMaxZoom,
			ZoomSpeed:      defaultZoomSpeed,
			Smoothing:      defaultSmoothing,
			TouchSmoothing: defaultTouchSmoothing,
			SmallScreenPx:  defaultSmallScreenPx,
		},
		Render: Render{
			DrawingWindow:      defaultDrawingWindow,
			LineWidth:          defaultLineWidth,
			FontSize:           defaultFontSize,
			MarkerRadius:       defaultMarkerRadius,
			ContextualOpacity:  defaultContextualOpacity,
			NearBlackLuminance: defaultNearBlackLuminance,
			Background:         defaultBackground,
			Foreground:         defaultForeground,
			Highlight:          defaultHighlight,
		},
		Library: Library{
			Dir: defaultLibraryDir,
		},
		Export: Export{
			Dir:    defaultExportDir,
			Width:  defaultExportWidth,
			Height: defaultExportHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
