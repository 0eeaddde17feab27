package movement

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// FixedTimeStep is the per-frame integration step.
	// One frame moves speed*FixedTimeStep regardless of how long the frame took.
	FixedTimeStep float32 = 0.02
	// DefaultSpeed is the translation speed in meters per second of full stick deflection.
	DefaultSpeed float32 = 2
	// DefaultRotationSpeed scales the smoothed turn input into radians per frame.
	DefaultRotationSpeed float32 = 0.008
	// DefaultEyeHeight is the viewpoint height above the rig origin without a headset.
	DefaultEyeHeight float32 = 1.6

	smoothingRetain float32 = 0.8
	smoothingGain   float32 = 0.3
	smoothingDecay  float32 = 0.9
)

// AxisSource reports the thumbstick axes of a tracked controller.
type AxisSource interface {
	// Axes returns the raw axis values for a hand.
	//
	// Parameters:
	//   - hand: the controller to read
	//
	// Returns:
	//   - []float32: the axes, any length, values may be NaN
	//   - bool: false if no controller is connected for that hand
	Axes(hand common.Hand) ([]float32, bool)
}

// controller is the implementation of the Controller interface.
type controller struct {
	rig           *rig
	input         AxisSource
	speed         float32
	rotationSpeed float32
}

// Controller integrates two thumbsticks into the rig once per frame.
// The left stick strafes. The right stick turns (horizontal) and walks (vertical).
// There is no collision or bounds checking.
type Controller interface {
	// Update reads both sticks and moves the rig by one fixed step.
	Update()

	// Rig returns the viewpoint the controller moves.
	//
	// Returns:
	//   - Rig: the rig
	Rig() Rig

	// Speed returns the translation speed.
	//
	// Returns:
	//   - float32: meters per second of full deflection
	Speed() float32

	// RotationSpeed returns the turn rate multiplier.
	//
	// Returns:
	//   - float32: radians per frame per unit of smoothed input
	RotationSpeed() float32
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
		speed:         DefaultSpeed,
		rotationSpeed: DefaultRotationSpeed,
	}
	for _, option := range options {
		option(c)
	}
	if c.rig == nil {
		c.rig = NewRig().(*rig)
	}
	return c
}

func (c *controller) Update() {
	if c.input == nil {
		return
	}
	step := c.speed * FixedTimeStep

	if axes, ok := c.input.Axes(common.HandLeft); ok {
		h := readAxis(axes, common.AxisLeftX, common.AxisRightX)
		if h != 0 {
			c.translate(mgl32.Vec3{h, 0, 0}, step)
		}
	}

	if axes, ok := c.input.Axes(common.HandRight); ok {
		h := readAxis(axes, common.AxisRightX, common.AxisLeftX)
		v := readAxis(axes, common.AxisRightY, common.AxisLeftY)

		if h != 0 {
			c.rig.smoothed = c.rig.smoothed*smoothingRetain + h*smoothingGain
			turn := common.YawQuat(c.rig.smoothed * c.rotationSpeed)
			c.rig.SetOrientation(c.rig.orientation.Mul(turn))
		} else {
			c.rig.smoothed *= smoothingDecay
		}

		if v != 0 {
			c.translate(mgl32.Vec3{0, 0, v}, step)
		}
	}
}

// translate moves the rig along a local direction rotated into world space.
func (c *controller) translate(local mgl32.Vec3, step float32) {
	world := common.RotateVec(c.rig.orientation, local).Mul(step)
	c.rig.position = c.rig.position.Add(world)
}

func (c *controller) Rig() Rig {
	return c.rig
}

func (c *controller) Speed() float32 {
	return c.speed
}

func (c *controller) RotationSpeed() float32 {
	return c.rotationSpeed
}

// readAxis returns axes[primary], or axes[fallback] when the primary is missing, NaN or zero, or 0.
func readAxis(axes []float32, primary, fallback int) float32 {
	if v := axisAt(axes, primary); v != 0 {
		return v
	}
	return axisAt(axes, fallback)
}

func axisAt(axes []float32, i int) float32 {
	if i < 0 || i >= len(axes) {
		return 0
	}
	v := axes[i]
	if math.IsNaN(float64(v)) {
		return 0
	}
	return v
}
