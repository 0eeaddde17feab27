package audio

import (
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
)

// ControllerBuilderOption is a functional option for configuring a Controller via NewController.
type ControllerBuilderOption func(*controller)

// WithBackend is an option builder that sets how tracks are opened.
//
// Parameters:
//   - backend: the audio backend
//
// Returns:
//   - ControllerBuilderOption: a function that applies the backend option to a controller
func WithBackend(backend Backend) ControllerBuilderOption {
	return func(c *controller) {
		c.backend = backend
	}
}

// WithQueue is an option builder that sets the queue loads and retries complete on.
// Without one the controller creates a private queue, which then never drains.
//
// Parameters:
//   - q: the dispatch queue drained by the frame loop
//
// Returns:
//   - ControllerBuilderOption: a function that applies the queue option to a controller
func WithQueue(q dispatch.Queue) ControllerBuilderOption {
	return func(c *controller) {
		c.queue = q
	}
}

// WithTracks is an option builder that sets the playlist. The first track is selected.
//
// Parameters:
//   - tracks: the playlist in cycle order
//
// Returns:
//   - ControllerBuilderOption: a function that applies the tracks option to a controller
func WithTracks(tracks ...Track) ControllerBuilderOption {
	return func(c *controller) {
		c.tracks = append([]Track(nil), tracks...)
		c.index = 0
	}
}

// WithVolume is an option builder that sets the playback gain.
//
// Parameters:
//   - volume: the gain, clamped to [0, 1]
//
// Returns:
//   - ControllerBuilderOption: a function that applies the volume option to a controller
func WithVolume(volume float64) ControllerBuilderOption {
	return func(c *controller) {
		c.volume = min(max(volume, 0), 1)
	}
}

// WithLoop is an option builder that sets whether tracks repeat.
//
// Parameters:
//   - loop: true to repeat indefinitely
//
// Returns:
//   - ControllerBuilderOption: a function that applies the loop option to a controller
func WithLoop(loop bool) ControllerBuilderOption {
	return func(c *controller) {
		c.loop = loop
	}
}

// WithRetryDelay is an option builder that sets the wait before retrying a blocked autoplay.
//
// Parameters:
//   - d: the delay
//
// Returns:
//   - ControllerBuilderOption: a function that applies the retry delay option to a controller
func WithRetryDelay(d time.Duration) ControllerBuilderOption {
	return func(c *controller) {
		c.retryDelay = d
	}
}
