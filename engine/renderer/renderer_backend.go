package renderer

import "github.com/cogentcore/webgpu/wgpu"

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// SurfaceSource supplies the native surface a renderer presents to. window.Window implements it.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform surface descriptor.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil before the window exists
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int
}

// rendererBackend is the GPU API implementation behind a Renderer.
type rendererBackend interface {
	ConfigureSurface(width, height int) error
	SetPresentMode(mode PresentMode)
	ClearFrame(color wgpu.Color) error
	AdapterName() string
	Release()
}
