package movement

import (
	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/go-gl/mathgl/mgl32"
)

// rig is the implementation of the Rig interface.
type rig struct {
	position    mgl32.Vec3
	orientation mgl32.Quat
	smoothed    float32
	eyeHeight   float32
}

// Rig is the tracked viewpoint the movement controller drives.
// Only the movement controller mutates it during a frame; the camera and the scene read it.
type Rig interface {
	// Position returns the rig origin in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the rig origin.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Orientation returns the rig rotation.
	//
	// Returns:
	//   - mgl32.Quat: the unit quaternion
	Orientation() mgl32.Quat

	// SetOrientation replaces the rig rotation.
	//
	// Parameters:
	//   - q: the new rotation, normalized on assignment
	SetOrientation(q mgl32.Quat)

	// Smoothed returns the smoothed turn input carried between frames.
	//
	// Returns:
	//   - float32: the smoothed stick value
	Smoothed() float32

	// Forward returns the direction the rig faces, -Z rotated by the orientation.
	//
	// Returns:
	//   - mgl32.Vec3: the unit forward vector
	Forward() mgl32.Vec3

	// Eye returns the viewpoint position, the rig origin raised by the eye height.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Target returns a point one unit ahead of the eye, for building a view matrix.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at point
	Target() mgl32.Vec3
}

var _ Rig = &rig{}

// NewRig creates a new Rig with the provided options.
//
// Parameters:
//   - options: variadic list of RigBuilderOption functions to configure the Rig
//
// Returns:
//   - Rig: the newly created Rig instance
func NewRig(options ...RigBuilderOption) Rig {
	r := &rig{
		orientation: mgl32.QuatIdent(),
		eyeHeight:   DefaultEyeHeight,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *rig) Position() mgl32.Vec3 {
	return r.position
}

func (r *rig) SetPosition(p mgl32.Vec3) {
	r.position = p
}

func (r *rig) Orientation() mgl32.Quat {
	return r.orientation
}

func (r *rig) SetOrientation(q mgl32.Quat) {
	r.orientation = q.Normalize()
}

func (r *rig) Smoothed() float32 {
	return r.smoothed
}

func (r *rig) Forward() mgl32.Vec3 {
	return common.RotateVec(r.orientation, mgl32.Vec3{0, 0, -1})
}

func (r *rig) Eye() mgl32.Vec3 {
	return r.position.Add(common.WorldUp.Mul(r.eyeHeight))
}

func (r *rig) Target() mgl32.Vec3 {
	return r.Eye().Add(r.Forward())
}

// RigBuilderOption is a functional option for configuring a Rig via NewRig.
type RigBuilderOption func(*rig)

// WithPosition is an option builder that sets the starting position.
//
// Parameters:
//   - p: the position in world space
//
// Returns:
//   - RigBuilderOption: a function that applies the position option to a rig
func WithPosition(p mgl32.Vec3) RigBuilderOption {
	return func(r *rig) {
		r.position = p
	}
}

// WithYaw is an option builder that sets the starting heading.
//
// Parameters:
//   - radians: rotation about the vertical axis
//
// Returns:
//   - RigBuilderOption: a function that applies the yaw option to a rig
func WithYaw(radians float32) RigBuilderOption {
	return func(r *rig) {
		r.orientation = common.YawQuat(radians)
	}
}

// WithEyeHeight is an option builder that sets how far above the rig origin the viewpoint sits.
// A headset reports its own height, so the immersive session uses 0.
//
// Parameters:
//   - h: the height in meters
//
// Returns:
//   - RigBuilderOption: a function that applies the eye height option to a rig
func WithEyeHeight(h float32) RigBuilderOption {
	return func(r *rig) {
		r.eyeHeight = h
	}
}
