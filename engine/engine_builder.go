package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
)

// DefaultTickRate is the scene update rate used when none is configured.
const DefaultTickRate = 60.0

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling logs loop rate and memory statistics every interval.
// A non-positive interval leaves profiling off.
//
// Parameters:
//   - interval: time between profiler log lines
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = interval > 0
		if interval > 0 {
			e.profileInterval = interval
		}
	}
}

// WithTickRate sets how many times per second active scenes are updated.
// Values <= 0 fall back to DefaultTickRate.
//
// Parameters:
//   - hz: scene updates per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(hz float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = frameInterval(hz, DefaultTickRate)
	}
}

// WithRenderFrameLimit caps how often frames are presented. 0 leaves the render loop
// paced by the surface present mode alone.
//
// Parameters:
//   - fps: maximum presented frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameInterval(fps, 0)
	}
}

// WithWindow attaches the window whose message loop Run drives and whose resizes
// reach every scene. Without one the engine runs headless until Quit.
//
// Parameters:
//   - w: the showroom window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given key. Scenes update in ascending key order
// and the lowest active one with a renderer presents.
//
// Parameters:
//   - key: ordering key
//   - s: the scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithStartScenes makes Run start every registered scene (asset loading and music)
// before the loops begin.
//
// Parameters:
//   - start: whether Run starts the scenes
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStartScenes(start bool) EngineBuilderOption {
	return func(e *engine) {
		e.startScenes = start
	}
}
