// Package window opens the desktop window the board is presented in and turns GLFW input into
// board gestures: drag to pan, scroll to zoom, and key presses.
package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the desktop window hosting the board. Callbacks run on the thread that calls
// ProcessMessages; positions are framebuffer pixels.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel and trackpad scrolling.
	//
	// Parameters:
	//   - callback: function receiving the cursor position and scroll delta (positive = zoom in)
	SetScrollCallback(callback func(x, y float64, delta float32))

	// SetIconifyCallback sets the callback fired when the window is minimized or restored.
	//
	// Parameters:
	//   - callback: function receiving true when the window was minimized
	SetIconifyCallback(callback func(iconified bool))

	// SetKeyDownCallback sets the callback for key presses, including auto-repeat.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetDragStartCallback sets the callback for a left or middle button press, which starts a
	// drag of the board.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetDragStartCallback(callback func(x, y int32))

	// SetDragEndCallback sets the callback for the release of the button that started a drag.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetDragEndCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for presenting into this window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if the window is not open
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetTitle replaces the title bar text. Safe to call from any goroutine; the title is applied
	// on the next message loop iteration.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// IsRunning reports whether the window is open and has not been asked to close.
	IsRunning() bool

	// RequestClose asks the message loop to stop. Unlike Close it may be called from any goroutine.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never opened
	Close() error

	// ProcessMessages runs the message loop until the window closes.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

type engineWindow struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	// maxWidth and maxHeight of zero leave the size unbounded.
	maxWidth  int
	maxHeight int
	resizable bool

	// internalWindow holds the platform window (glfwWindow).
	internalWindow any

	onResize    func(width, height int)
	onScroll    func(x, y float64, delta float32)
	onIconify   func(iconified bool)
	onKeyDown   func(keyCode uint32)
	onDragStart func(x, y int32)
	onDragEnd   func(x, y int32)
	onMouseMove func(x, y int32)

	// titleMu guards pendingTitle, which SetTitle may write from any goroutine.
	titleMu      *sync.Mutex
	pendingTitle string
}

var _ Window = &engineWindow{}

// NewWindow opens a window with the given options. It must be called from the main goroutine,
// which must then run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if GLFW could not create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Whiteboard",
		width:     1280,
		height:    720,
		minWidth:  480,
		minHeight: 320,
		resizable: true,
		titleMu:   &sync.Mutex{},
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(x, y float64, delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetIconifyCallback(callback func(iconified bool)) {
	w.onIconify = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetDragStartCallback(callback func(x, y int32)) {
	w.onDragStart = callback
}

func (w *engineWindow) SetDragEndCallback(callback func(x, y int32)) {
	w.onDragEnd = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	w.pendingTitle = title
}

// takeTitle returns and clears the pending title.
func (w *engineWindow) takeTitle() (string, bool) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	t := w.pendingTitle
	w.pendingTitle = ""
	return t, t != ""
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for platformProcessMessages(w) {
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
