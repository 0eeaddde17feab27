package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// LoopMode selects what an action does when its time passes the clip duration.
type LoopMode int

const (
	// LoopRepeat wraps the time back to the start indefinitely.
	LoopRepeat LoopMode = iota
	// LoopOnce clamps the time at the clip end and stops the action there, holding the last pose.
	LoopOnce
)

// String returns the mode name.
func (m LoopMode) String() string {
	switch m {
	case LoopRepeat:
		return "repeat"
	case LoopOnce:
		return "once"
	default:
		return "unknown"
	}
}

// action is the implementation of the Action interface.
// It mirrors the per-instance playback state the GPU animator kept (time, speed, loop, blend),
// with the blend expressed as a weight fade so any number of actions can overlap.
type action struct {
	clip *model.AnimationClip

	playing   bool
	paused    bool
	weight    float32
	timeScale float32
	time      float32
	loop      LoopMode

	fading      bool
	fadeFrom    float32
	fadeTo      float32
	fadeElapsed float32
	fadeDur     float32
}

// Action is the playback handle for one clip on one mixer.
type Action interface {
	// Clip returns the clip the action samples.
	//
	// Returns:
	//   - *model.AnimationClip: the clip
	Clip() *model.AnimationClip

	// Name returns the clip name.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Play starts the action at its current time and weight and clears the paused flag.
	Play()

	// Stop halts the action, rewinds it and drops its weight to zero.
	Stop()

	// Reset rewinds the action to time zero without changing playing, paused or weight.
	Reset()

	// SetPaused freezes or resumes time advancement. Fades keep running while paused.
	//
	// Parameters:
	//   - paused: true to freeze
	SetPaused(paused bool)

	// Paused reports whether the action is paused.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// IsPlaying reports whether the action is started, whether or not it is paused.
	//
	// Returns:
	//   - bool: true if started
	IsPlaying() bool

	// IsRunning reports whether the action is started and not paused, so its time advances.
	//
	// Returns:
	//   - bool: true if time advances on Update
	IsRunning() bool

	// Weight returns the current blend weight in [0, 1].
	//
	// Returns:
	//   - float32: the weight
	Weight() float32

	// SetWeight sets the blend weight and cancels any fade in flight.
	//
	// Parameters:
	//   - w: the weight, clamped to [0, 1]
	SetWeight(w float32)

	// TimeScale returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the multiplier, 1 is normal speed
	TimeScale() float32

	// SetTimeScale sets the playback speed multiplier.
	//
	// Parameters:
	//   - s: the multiplier
	SetTimeScale(s float32)

	// Time returns the local time in seconds.
	//
	// Returns:
	//   - float32: the time within the clip
	Time() float32

	// SetTime jumps to a local time in seconds.
	//
	// Parameters:
	//   - t: the time, wrapped or clamped by the loop mode
	SetTime(t float32)

	// Loop returns the loop mode.
	//
	// Returns:
	//   - LoopMode: the mode
	Loop() LoopMode

	// SetLoop sets the loop mode.
	//
	// Parameters:
	//   - mode: the mode
	SetLoop(mode LoopMode)

	// FadeIn ramps the weight from its current value to 1 over d seconds.
	// A stopped action starts from zero.
	//
	// Parameters:
	//   - d: the fade duration in seconds, <= 0 applies full weight at once
	FadeIn(d float32)

	// FadeOut ramps the weight to 0 over d seconds and stops the action when it gets there.
	//
	// Parameters:
	//   - d: the fade duration in seconds, <= 0 stops at once
	FadeOut(d float32)

	// Fading reports whether a fade is in flight.
	//
	// Returns:
	//   - bool: true while fading
	Fading() bool
}

var _ Action = &action{}

func newAction(clip *model.AnimationClip) *action {
	return &action{
		clip:      clip,
		timeScale: 1,
		loop:      LoopRepeat,
	}
}

func (a *action) Clip() *model.AnimationClip {
	return a.clip
}

func (a *action) Name() string {
	return a.clip.Name
}

func (a *action) Play() {
	a.playing = true
	a.paused = false
}

func (a *action) Stop() {
	a.playing = false
	a.paused = false
	a.time = 0
	a.weight = 0
	a.fading = false
}

func (a *action) Reset() {
	a.time = 0
}

func (a *action) SetPaused(paused bool) {
	a.paused = paused
}

func (a *action) Paused() bool {
	return a.paused
}

func (a *action) IsPlaying() bool {
	return a.playing
}

func (a *action) IsRunning() bool {
	return a.playing && !a.paused
}

func (a *action) Weight() float32 {
	return a.weight
}

func (a *action) SetWeight(w float32) {
	a.weight = clamp01(w)
	a.fading = false
}

func (a *action) TimeScale() float32 {
	return a.timeScale
}

func (a *action) SetTimeScale(s float32) {
	a.timeScale = s
}

func (a *action) Time() float32 {
	return a.time
}

func (a *action) SetTime(t float32) {
	a.time = t
	a.wrapTime()
}

func (a *action) Loop() LoopMode {
	return a.loop
}

func (a *action) SetLoop(mode LoopMode) {
	a.loop = mode
}

func (a *action) FadeIn(d float32) {
	from := a.weight
	if !a.playing {
		from = 0
	}
	a.startFade(from, 1, d)
}

func (a *action) FadeOut(d float32) {
	a.startFade(a.weight, 0, d)
}

func (a *action) Fading() bool {
	return a.fading
}

func (a *action) startFade(from, to, d float32) {
	if d <= 0 {
		a.fading = false
		a.weight = to
		if to == 0 {
			a.Stop()
		}
		return
	}
	a.fading = true
	a.fadeFrom = from
	a.fadeTo = to
	a.fadeElapsed = 0
	a.fadeDur = d
	a.weight = from
}

// update advances time and fade by dt seconds.
func (a *action) update(dt float32) {
	if a.IsRunning() {
		a.time += dt * a.timeScale
		a.wrapTime()
	}

	if !a.fading {
		return
	}
	a.fadeElapsed += dt
	progress := a.fadeElapsed / a.fadeDur
	if progress >= 1 {
		a.fading = false
		a.weight = a.fadeTo
		if a.fadeTo == 0 {
			a.Stop()
		}
		return
	}
	a.weight = a.fadeFrom + (a.fadeTo-a.fadeFrom)*progress
}

func (a *action) wrapTime() {
	duration := a.clip.Duration
	if duration <= 0 {
		a.time = 0
		return
	}

	switch a.loop {
	case LoopOnce:
		if a.time >= duration {
			a.time = duration
			a.playing = false
		} else if a.time < 0 {
			a.time = 0
			a.playing = false
		}
	default:
		if a.time >= duration || a.time < 0 {
			a.time = float32(math.Mod(float64(a.time), float64(duration)))
			if a.time < 0 {
				a.time += duration
			}
		}
	}
}

// contributes reports whether the action takes part in the blended pose.
// A LoopOnce action that finished keeps contributing its last frame until its weight is gone.
func (a *action) contributes() bool {
	return a.weight > 0 && (a.playing || a.fading || a.loop == LoopOnce)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
