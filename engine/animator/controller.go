package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

const (
	// DefaultFadeDuration is the crossfade length between clips, in seconds.
	DefaultFadeDuration float32 = 0.5
	// MinFadeDuration is the shortest accepted crossfade.
	MinFadeDuration float32 = 0.2
	// MaxFadeDuration is the longest accepted crossfade.
	MaxFadeDuration float32 = 0.5
)

// controller is the implementation of the Controller interface.
type controller struct {
	skeleton *model.Skeleton
	mixer    Mixer
	initial  []*model.AnimationClip

	names    []string
	sources  map[string]*model.AnimationClip
	actions  map[string]*action
	stripped map[string]bool

	current    string
	hasCurrent bool

	fade          float32
	timeScale     float32
	stripVertical bool
	autoPlay      bool
}

// Controller selects which clip of a model plays and crossfades between them.
// Every clip gets exactly one action, created up front; the controller only moves weights and time.
type Controller interface {
	// PlayByName crossfades from the current clip to the named one and plays it on repeat from the start.
	// Playing the current clip again restarts it.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: false if no clip has that name, in which case nothing changes
	PlayByName(name string) bool

	// PlayByIndex plays the clip at index, clamped into the valid range.
	//
	// Parameters:
	//   - index: the clip index in Names order
	//
	// Returns:
	//   - bool: false only if no clips are loaded
	PlayByIndex(index int) bool

	// Next plays the clip after the current one, wrapping to the first.
	// With no current clip it plays the first clip.
	//
	// Returns:
	//   - bool: false if no clips are loaded
	Next() bool

	// Previous plays the clip before the current one, wrapping to the last.
	// With no current clip it plays the last clip.
	//
	// Returns:
	//   - bool: false if no clips are loaded
	Previous() bool

	// Toggle pauses the current clip if it is playing and resumes it if it is paused.
	// With clips loaded but none current it plays the first clip.
	//
	// Returns:
	//   - bool: false if no clips are loaded
	Toggle() bool

	// AddClips appends clips from a separate animation asset.
	// Clips are bound to the controller's skeleton by bone name; a clip matching no bone is skipped,
	// as is a clip whose name is already taken.
	//
	// Parameters:
	//   - clips: the clips to add
	//
	// Returns:
	//   - int: the number of clips added
	AddClips(clips ...*model.AnimationClip) int

	// Current returns the name of the current clip.
	//
	// Returns:
	//   - string: the clip name
	//   - bool: false if no clip has been played yet
	Current() (string, bool)

	// CurrentIndex returns the index of the current clip.
	//
	// Returns:
	//   - int: the index in Names order, or -1 if none
	CurrentIndex() int

	// Names returns every clip name in index order.
	//
	// Returns:
	//   - []string: a copy of the names
	Names() []string

	// Count returns the number of clips.
	//
	// Returns:
	//   - int: the clip count
	Count() int

	// IsPlaying reports whether the current clip is advancing.
	//
	// Returns:
	//   - bool: true if a current clip exists and is neither paused nor stopped
	IsPlaying() bool

	// Handle returns the action for a clip name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - Action: the action
	//   - bool: false if no clip has that name
	Handle(name string) (Action, bool)

	// Update advances playback by dt seconds. Call once per frame.
	//
	// Parameters:
	//   - dt: frame delta time in seconds
	Update(dt float32)

	// Pose returns the blended local bone transforms for the current frame.
	//
	// Returns:
	//   - []model.Transform: one transform per bone, nil for a model without a skeleton
	Pose() []model.Transform

	// Skeleton returns the skeleton the controller animates.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton, may be nil
	Skeleton() *model.Skeleton

	// Release stops every clip and drops all actions. The controller is empty afterwards.
	Release()
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
		sources:   make(map[string]*model.AnimationClip),
		actions:   make(map[string]*action),
		stripped:  make(map[string]bool),
		fade:      DefaultFadeDuration,
		timeScale: 1,
	}
	for _, option := range options {
		option(c)
	}

	c.mixer = NewMixer(c.skeleton)
	for _, clip := range c.initial {
		c.register(clip)
	}
	c.initial = nil

	if c.autoPlay && len(c.names) > 0 {
		c.PlayByIndex(0)
	}
	return c
}

func (c *controller) register(clip *model.AnimationClip) bool {
	if clip == nil {
		return false
	}
	if _, exists := c.sources[clip.Name]; exists {
		slog.Debug("animator: duplicate clip name skipped", "clip", clip.Name)
		return false
	}

	a := c.mixer.ClipAction(clip).(*action)
	a.SetTimeScale(c.timeScale)
	c.names = append(c.names, clip.Name)
	c.sources[clip.Name] = clip
	c.actions[clip.Name] = a
	return true
}

func (c *controller) PlayByName(name string) bool {
	src, ok := c.sources[name]
	if !ok {
		return false
	}

	if c.stripVertical && !c.stripped[name] {
		c.mixer.ClipAction(src.WithoutVerticalMotion(c.skeleton))
		c.stripped[name] = true
	}

	target := c.actions[name]
	if c.hasCurrent && c.current == name {
		target.Reset()
		target.SetLoop(LoopRepeat)
		target.Play()
		target.SetWeight(1)
		return true
	}

	if c.hasCurrent {
		c.actions[c.current].FadeOut(c.fade)
	}

	target.Reset()
	target.SetLoop(LoopRepeat)
	target.FadeIn(c.fade)
	target.Play()

	c.current = name
	c.hasCurrent = true
	slog.Debug("animator: playing clip", "clip", name, "fade", c.fade)
	return true
}

func (c *controller) PlayByIndex(index int) bool {
	if len(c.names) == 0 {
		return false
	}
	return c.PlayByName(c.names[common.Clamp(index, 0, len(c.names)-1)])
}

func (c *controller) Next() bool {
	if len(c.names) == 0 {
		return false
	}
	if !c.hasCurrent {
		return c.PlayByIndex(0)
	}
	return c.PlayByIndex(common.Wrap(c.CurrentIndex()+1, len(c.names)))
}

func (c *controller) Previous() bool {
	if len(c.names) == 0 {
		return false
	}
	if !c.hasCurrent {
		return c.PlayByIndex(len(c.names) - 1)
	}
	return c.PlayByIndex(common.Wrap(c.CurrentIndex()-1, len(c.names)))
}

func (c *controller) Toggle() bool {
	if len(c.names) == 0 {
		return false
	}
	if !c.hasCurrent {
		return c.PlayByIndex(0)
	}

	a := c.actions[c.current]
	switch {
	case a.IsRunning():
		a.SetPaused(true)
	case a.Paused():
		a.SetPaused(false)
	default:
		a.Play()
		if a.Weight() == 0 {
			a.SetWeight(1)
		}
	}
	return true
}

func (c *controller) AddClips(clips ...*model.AnimationClip) int {
	added := 0
	for _, clip := range clips {
		if clip == nil {
			continue
		}
		bound := clip
		if c.skeleton != nil {
			var matched int
			bound, matched = clip.Retarget(c.skeleton)
			if matched == 0 {
				slog.Warn("animator: clip matches no bone, skipped", "clip", clip.Name, "channels", len(clip.Channels))
				continue
			}
		}
		if c.register(bound) {
			added++
		}
	}

	if added > 0 && c.autoPlay && !c.hasCurrent {
		c.PlayByIndex(0)
	}
	return added
}

func (c *controller) Current() (string, bool) {
	return c.current, c.hasCurrent
}

func (c *controller) CurrentIndex() int {
	if !c.hasCurrent {
		return -1
	}
	for i, n := range c.names {
		if n == c.current {
			return i
		}
	}
	return -1
}

func (c *controller) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *controller) Count() int {
	return len(c.names)
}

func (c *controller) IsPlaying() bool {
	if !c.hasCurrent {
		return false
	}
	return c.actions[c.current].IsRunning()
}

func (c *controller) Handle(name string) (Action, bool) {
	a, ok := c.actions[name]
	if !ok {
		return nil, false
	}
	return a, true
}

func (c *controller) Update(dt float32) {
	c.mixer.Update(dt)
}

func (c *controller) Pose() []model.Transform {
	return c.mixer.Pose()
}

func (c *controller) Skeleton() *model.Skeleton {
	return c.skeleton
}

func (c *controller) Release() {
	c.mixer.Release()
	c.names = nil
	c.sources = make(map[string]*model.AnimationClip)
	c.actions = make(map[string]*action)
	c.stripped = make(map[string]bool)
	c.current = ""
	c.hasCurrent = false
}
