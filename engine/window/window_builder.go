package window

import "github.com/Carmen-Shannon/oxy-vr/common"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client area size. Non-positive values keep the default.
// The size is fitted into the size limits when the window is created.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithMinSize sets the smallest size the window can be resized to.
//
// Parameters:
//   - width: minimum width in pixels
//   - height: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = max(width, 1), max(height, 1)
	}
}

// WithMaxSize sets the largest size the window can be resized to.
//
// Parameters:
//   - width: maximum width in pixels
//   - height: maximum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth, w.maxHeight = width, height
	}
}

// WithGamepadDeadzone sets the stick magnitude below which an axis reads as zero.
// Values are clamped to [0, 0.9].
//
// Parameters:
//   - deadzone: the deadzone radius per axis
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithGamepadDeadzone(deadzone float32) WindowBuilderOption {
	return func(w *engineWindow) {
		w.deadzone = common.Clamp(deadzone, 0, 0.9)
	}
}

// fitSizeLimits orders the limits and pulls the initial size inside them.
func (w *engineWindow) fitSizeLimits() {
	if w.maxWidth < w.minWidth {
		w.maxWidth = w.minWidth
	}
	if w.maxHeight < w.minHeight {
		w.maxHeight = w.minHeight
	}
	w.width = common.Clamp(w.width, w.minWidth, w.maxWidth)
	w.height = common.Clamp(w.height, w.minHeight, w.maxHeight)
}
