package game_object

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/animator"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the placement identifier.
//
// Parameters:
//   - id: the layout ID
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is drawn and updated.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithAnimator sets the animation controller for this GameObject.
//
// Parameters:
//   - anim: the controller
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the animator
func WithAnimator(anim animator.Controller) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.anim = anim
	}
}

// WithPosition sets the world position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = p
	}
}

// WithRotation sets the Euler rotation in radians.
//
// Parameters:
//   - r: radians around X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(r mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = r
	}
}

// WithScale sets the per-axis scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = s
	}
}

// WithHeadFollow turns the head bone toward the viewer every update.
//
// Parameters:
//   - follow: true to enable
//
// Returns:
//   - GameObjectBuilderOption: functional option to set head-follow
func WithHeadFollow(follow bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.headFollow = follow
	}
}
