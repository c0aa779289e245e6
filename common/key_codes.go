package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyF     = 70  // F key (ASCII) - focus
	KeyM     = 77  // M key (ASCII) - mute
	KeyR     = 82  // R key (ASCII) - repeat
	KeyEqual = 61  // = key (ASCII) - zoom in
	KeyMinus = 45  // - key (ASCII) - zoom out
	KeySpace = 32  // Spacebar (ASCII) - pause
	KeyEsc   = 256 // Escape key (GLFW) - quit
	KeyRight = 262 // Right arrow (GLFW) - pan
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)
