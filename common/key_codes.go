package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyN     = 78  // N key, next animation
	KeyP     = 80  // P key, previous animation
	KeyM     = 77  // M key, next music track
	KeySpace = 32  // Spacebar, toggle animation
	KeyEsc   = 256 // Escape key (GLFW)
	KeyRight = 262 // Right arrow, orbit right
	KeyLeft  = 263 // Left arrow, orbit left
	KeyDown  = 264 // Down arrow, tilt down
	KeyUp    = 265 // Up arrow, tilt up
)
