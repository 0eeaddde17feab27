package animator

import (
	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// ControllerBuilderOption is a functional option for configuring a Controller via NewController.
type ControllerBuilderOption func(*controller)

// WithModel is an option builder that takes the skeleton and every bundled clip of a model.
//
// Parameters:
//   - m: the model to animate
//
// Returns:
//   - ControllerBuilderOption: a function that applies the model option to a controller
func WithModel(m model.Model) ControllerBuilderOption {
	return func(c *controller) {
		if m == nil {
			return
		}
		c.skeleton = m.Skeleton()
		c.initial = append(c.initial, m.Animations()...)
	}
}

// WithSkeleton is an option builder that sets the skeleton to pose.
//
// Parameters:
//   - skeleton: the bone hierarchy
//
// Returns:
//   - ControllerBuilderOption: a function that applies the skeleton option to a controller
func WithSkeleton(skeleton *model.Skeleton) ControllerBuilderOption {
	return func(c *controller) {
		c.skeleton = skeleton
	}
}

// WithClips is an option builder that adds clips already bound to the skeleton, in index order.
//
// Parameters:
//   - clips: the clips
//
// Returns:
//   - ControllerBuilderOption: a function that applies the clips option to a controller
func WithClips(clips ...*model.AnimationClip) ControllerBuilderOption {
	return func(c *controller) {
		c.initial = append(c.initial, clips...)
	}
}

// WithFadeDuration is an option builder that sets the crossfade length.
// Values outside [MinFadeDuration, MaxFadeDuration] are clamped.
//
// Parameters:
//   - seconds: the fade duration
//
// Returns:
//   - ControllerBuilderOption: a function that applies the fade option to a controller
func WithFadeDuration(seconds float32) ControllerBuilderOption {
	return func(c *controller) {
		c.fade = common.Clamp(seconds, MinFadeDuration, MaxFadeDuration)
	}
}

// WithTimeScale is an option builder that sets the playback speed of every clip.
//
// Parameters:
//   - scale: the speed multiplier, values <= 0 are ignored
//
// Returns:
//   - ControllerBuilderOption: a function that applies the time scale option to a controller
func WithTimeScale(scale float32) ControllerBuilderOption {
	return func(c *controller) {
		if scale > 0 {
			c.timeScale = scale
		}
	}
}

// WithStripVerticalMotion is an option builder that pins every played clip to its starting height,
// leaving vertical placement to the scene.
//
// Parameters:
//   - strip: true to strip vertical motion
//
// Returns:
//   - ControllerBuilderOption: a function that applies the strip option to a controller
func WithStripVerticalMotion(strip bool) ControllerBuilderOption {
	return func(c *controller) {
		c.stripVertical = strip
	}
}

// WithAutoPlay is an option builder that plays the first clip as soon as one is available.
//
// Parameters:
//   - autoPlay: true to auto-play
//
// Returns:
//   - ControllerBuilderOption: a function that applies the auto-play option to a controller
func WithAutoPlay(autoPlay bool) ControllerBuilderOption {
	return func(c *controller) {
		c.autoPlay = autoPlay
	}
}
