package audio

import (
	"errors"
)

var (
	// ErrPlaybackBlocked is returned by Player.Play while the output device is not ready to start sound.
	// The controller treats it like a browser autoplay refusal: it retries once later and again on interaction.
	ErrPlaybackBlocked = errors.New("audio playback blocked")

	// ErrNoTracks is returned by track operations on an empty track list.
	ErrNoTracks = errors.New("no audio tracks configured")

	// ErrUnsupportedAudioFormat is returned by a backend for files it cannot decode.
	ErrUnsupportedAudioFormat = errors.New("unsupported audio format")
)

// Backend opens audio files as players.
type Backend interface {
	// Open decodes a track and prepares a paused player for it.
	// Open may block on file I/O and decoding; the controller calls it off the frame thread.
	//
	// Parameters:
	//   - path: the audio file
	//   - loop: true to repeat the track indefinitely
	//
	// Returns:
	//   - Player: the paused player
	//   - error: ErrUnsupportedAudioFormat, or the open/decode error
	Open(path string, loop bool) (Player, error)
}

// Player controls playback of one opened track.
type Player interface {
	// Play starts or resumes playback.
	//
	// Returns:
	//   - error: ErrPlaybackBlocked if the device cannot start sound yet
	Play() error

	// Pause halts playback, keeping the position.
	Pause()

	// IsPlaying reports whether sound is being produced.
	//
	// Returns:
	//   - bool: true while playing
	IsPlaying() bool

	// SetVolume sets the output gain.
	//
	// Parameters:
	//   - volume: the gain in [0, 1]
	SetVolume(volume float64)

	// Close stops playback and releases the decoder.
	//
	// Returns:
	//   - error: the close error, if any
	Close() error
}
