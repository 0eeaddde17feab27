package scene

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/audio"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/loader"
	"github.com/Carmen-Shannon/oxy-vr/engine/movement"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/xr"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithQueue sets the completion queue drained by Update. The scene creates and owns one when unset.
//
// Parameters:
//   - q: the queue
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithQueue(q dispatch.Queue) SceneBuilderOption {
	return func(s *scene) {
		s.queue = q
	}
}

// WithLoader sets the asset loader. When unset the scene creates one on its queue,
// rooted at the layout's asset_root.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoader(l loader.Loader) SceneBuilderOption {
	return func(s *scene) {
		s.ldr = l
	}
}

// WithAudioBackend enables the background playlist on a backend.
// Without one the scene is silent and next_track controls do nothing.
//
// Parameters:
//   - b: the audio backend
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAudioBackend(b audio.Backend) SceneBuilderOption {
	return func(s *scene) {
		s.audioBackend = b
	}
}

// WithAxisSource sets where the movement controller reads thumbstick axes.
//
// Parameters:
//   - src: the axis source
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAxisSource(src movement.AxisSource) SceneBuilderOption {
	return func(s *scene) {
		s.axes = src
	}
}

// WithSession sets the session the scene runs in. An immersive session selects the
// thumbstick rig as the viewpoint, an inline one the orbit camera.
//
// Parameters:
//   - opts: the session request
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSession(opts xr.SessionOptions) SceneBuilderOption {
	return func(s *scene) {
		s.session = xr.NewSessionOptions(opts.Mode, opts.Layers...)
	}
}

// WithImmersive is shorthand for WithSession without composition layers.
//
// Parameters:
//   - immersive: true for an immersive session, false for inline
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithImmersive(immersive bool) SceneBuilderOption {
	mode := xr.SessionInline
	if immersive {
		mode = xr.SessionImmersiveVR
	}
	return WithSession(xr.NewSessionOptions(mode))
}

// WithCamera sets the camera. The scene attaches the active viewpoint to it.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithRenderer sets the presenter the engine uses for this scene.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) SceneBuilderOption {
	return func(s *scene) {
		s.r = r
	}
}
