package renderer

import (
	"log/slog"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend rendererBackend

	clear wgpu.Color

	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer presents the showroom backdrop to the window surface every frame.
// Model drawing is not part of it; the renderer owns the GPU device and swapchain only.
type Renderer interface {
	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered and reconfigures on the next Resize.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the backdrop color.
	//
	// Parameters:
	//   - rgb: linear RGB in [0, 1]
	SetClearColor(rgb [3]float64)

	// Frame clears the swapchain image to the backdrop color and presents it.
	//
	// Returns:
	//   - error: ErrNoSurface while minimized, or a GPU error
	Frame() error

	// AdapterName returns the GPU adapter's name for logs.
	//
	// Returns:
	//   - string: the adapter name
	AdapterName() string

	// Release frees the device, surface and instance.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a wgpu Renderer presenting to the given surface.
//
// Parameters:
//   - src: the window providing the surface and its size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer with its surface configured
//   - error: if no adapter, device or surface format is available
func NewRenderer(src SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:    &sync.Mutex{},
		clear: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
	}
	for _, opt := range options {
		opt(r)
	}

	backend, err := newWGPURendererBackend(src.SurfaceDescriptor(), r.forceFallbackAdapter)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(src.Width(), src.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	slog.Info("renderer: surface ready", "adapter", r.backend.AdapterName(), "width", src.Width(), "height", src.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		slog.Error("renderer: resize failed", "width", width, "height", height, "error", err)
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(rgb [3]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear = wgpu.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}
}

func (r *renderer) Frame() error {
	r.mu.Lock()
	c := r.clear
	r.mu.Unlock()
	return r.backend.ClearFrame(c)
}

func (r *renderer) AdapterName() string {
	return r.backend.AdapterName()
}

func (r *renderer) Release() {
	r.backend.Release()
}
