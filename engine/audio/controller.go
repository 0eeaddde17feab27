package audio

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/maniartech/signals"
)

const (
	// DefaultVolume is the background music gain.
	DefaultVolume = 0.15
	// DefaultRetryDelay is how long a blocked autoplay waits before its single retry.
	DefaultRetryDelay = 3 * time.Second
)

// Track is one entry of the fixed playlist.
type Track struct {
	// ID is the stable identifier used in configuration.
	ID string `yaml:"id"`

	// DisplayName is the human readable title reported to observers.
	DisplayName string `yaml:"name"`

	// Path is the audio file.
	Path string `yaml:"path"`
}

// State is a snapshot of the controller's session.
type State struct {
	// TrackIndex is the index of the selected track, -1 with an empty playlist.
	TrackIndex int

	// Loaded reports whether the selected track's player is attached.
	Loaded bool

	// Playing reports whether the attached player is producing sound.
	Playing bool
}

// controller is the implementation of the Controller interface.
type controller struct {
	backend   Backend
	queue     dispatch.Queue
	ownsQueue bool

	tracks     []Track
	index      int
	volume     float64
	loop       bool
	retryDelay time.Duration

	player      Player
	loaded      bool
	generation  uint64
	cancelRetry func()
	closed      bool

	changed signals.Signal[Track]
}

// Controller loop-plays one background track at a time from a fixed playlist.
// All methods, and every callback the controller posts, run on the thread that drains its queue.
type Controller interface {
	// Start loads the selected track and plays it as soon as it is ready.
	// Calling Start again reloads the selected track.
	//
	// Returns:
	//   - error: ErrNoTracks with an empty playlist
	Start() error

	// Interact attempts playback if the track is loaded but silent.
	// Call it on every pointer, trigger or key interaction with the scene.
	Interact()

	// NextTrack selects the following track, wrapping to the first, reloads and notifies observers.
	//
	// Returns:
	//   - Track: the newly selected track
	//   - error: ErrNoTracks with an empty playlist
	NextTrack() (Track, error)

	// CurrentTrack returns the selected track.
	//
	// Returns:
	//   - Track: the track
	//   - bool: false with an empty playlist
	CurrentTrack() (Track, bool)

	// Tracks returns the playlist.
	//
	// Returns:
	//   - []Track: a copy of the playlist
	Tracks() []Track

	// State returns a snapshot of the session.
	//
	// Returns:
	//   - State: the snapshot
	State() State

	// OnTrackChange registers an observer of NextTrack.
	//
	// Parameters:
	//   - key: identifies the observer for RemoveTrackObserver
	//   - fn: receives the new track
	OnTrackChange(key string, fn func(ctx context.Context, track Track))

	// RemoveTrackObserver unregisters an observer.
	//
	// Parameters:
	//   - key: the key passed to OnTrackChange
	RemoveTrackObserver(key string)

	// Close cancels a pending retry and releases the player. Later calls are no-ops.
	Close()
}

var _ Controller = &controller{}

// NewController creates a new Controller with the provided options.
//
// Parameters:
//   - options: variadic list of ControllerBuilderOption functions to configure the Controller
//
// Returns:
//   - Controller: the newly created Controller instance
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		volume:     DefaultVolume,
		loop:       true,
		retryDelay: DefaultRetryDelay,
		changed:    signals.NewSync[Track](),
	}
	for _, option := range options {
		option(c)
	}
	if c.queue == nil {
		c.queue = dispatch.NewQueue()
		c.ownsQueue = true
	}
	return c
}

func (c *controller) Start() error {
	if len(c.tracks) == 0 {
		return ErrNoTracks
	}
	c.load()
	return nil
}

func (c *controller) Interact() {
	c.tryPlay(false)
}

func (c *controller) NextTrack() (Track, error) {
	if len(c.tracks) == 0 {
		return Track{}, ErrNoTracks
	}

	c.index = common.Wrap(c.index+1, len(c.tracks))
	track := c.tracks[c.index]
	slog.Info("audio: track changed", "track", track.ID, "name", track.DisplayName)

	c.load()
	c.changed.Emit(context.Background(), track)
	return track, nil
}

func (c *controller) CurrentTrack() (Track, bool) {
	if len(c.tracks) == 0 {
		return Track{}, false
	}
	return c.tracks[c.index], true
}

func (c *controller) Tracks() []Track {
	return append([]Track(nil), c.tracks...)
}

func (c *controller) State() State {
	s := State{TrackIndex: -1, Loaded: c.loaded}
	if len(c.tracks) > 0 {
		s.TrackIndex = c.index
	}
	s.Playing = c.player != nil && c.player.IsPlaying()
	return s
}

func (c *controller) OnTrackChange(key string, fn func(ctx context.Context, track Track)) {
	c.changed.AddListener(fn, key)
}

func (c *controller) RemoveTrackObserver(key string) {
	c.changed.RemoveListener(key)
}

func (c *controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.release()
	c.generation++
	if c.ownsQueue {
		c.queue.Close()
	}
}

// load replaces the current player with a fresh one for the selected track.
// The decode runs on the queue's workers; a completion that arrives after another load started is discarded.
func (c *controller) load() {
	if c.closed {
		return
	}
	c.release()
	c.generation++
	gen := c.generation
	track := c.tracks[c.index]
	loop := c.loop

	c.queue.Async(func() (any, error) {
		return c.backend.Open(track.Path, loop)
	}, func(result any, err error) {
		p, _ := result.(Player)
		if gen != c.generation || c.closed {
			if p != nil {
				_ = p.Close()
			}
			slog.Debug("audio: stale load discarded", "track", track.ID)
			return
		}
		if err != nil {
			slog.Error("audio: failed to load track", "track", track.ID, "path", track.Path, "error", err)
			return
		}

		p.SetVolume(c.volume)
		c.player = p
		c.loaded = true
		slog.Debug("audio: track loaded", "track", track.ID)
		c.tryPlay(true)
	})
}

// tryPlay starts the attached player. A blocked first attempt schedules one retry.
func (c *controller) tryPlay(scheduleRetry bool) {
	if !c.loaded || c.player == nil || c.player.IsPlaying() {
		return
	}

	err := c.player.Play()
	if err == nil {
		c.cancelPendingRetry()
		slog.Info("audio: playing", "track", c.tracks[c.index].ID)
		return
	}

	if !errors.Is(err, ErrPlaybackBlocked) {
		slog.Error("audio: play failed", "track", c.tracks[c.index].ID, "error", err)
		return
	}

	slog.Warn("audio: playback blocked, waiting for interaction", "track", c.tracks[c.index].ID)
	if scheduleRetry && c.cancelRetry == nil {
		gen := c.generation
		c.cancelRetry = c.queue.After(c.retryDelay, func() {
			c.cancelRetry = nil
			if gen != c.generation {
				return
			}
			c.tryPlay(false)
		})
	}
}

func (c *controller) cancelPendingRetry() {
	if c.cancelRetry != nil {
		c.cancelRetry()
		c.cancelRetry = nil
	}
}

// release stops and closes the current player and forgets any retry.
func (c *controller) release() {
	c.cancelPendingRetry()
	if c.player != nil {
		c.player.Pause()
		if err := c.player.Close(); err != nil {
			slog.Warn("audio: failed to close player", "error", err)
		}
		c.player = nil
	}
	c.loaded = false
}
