package movement

// ControllerBuilderOption is a functional option for configuring a Controller via NewController.
type ControllerBuilderOption func(*controller)

// WithRig is an option builder that sets the viewpoint to move.
//
// Parameters:
//   - r: a rig created by NewRig
//
// Returns:
//   - ControllerBuilderOption: a function that applies the rig option to a controller
func WithRig(r Rig) ControllerBuilderOption {
	return func(c *controller) {
		if impl, ok := r.(*rig); ok {
			c.rig = impl
		}
	}
}

// WithAxisSource is an option builder that sets where thumbstick values come from.
//
// Parameters:
//   - src: the axis source, typically the window's gamepad mapping
//
// Returns:
//   - ControllerBuilderOption: a function that applies the axis source option to a controller
func WithAxisSource(src AxisSource) ControllerBuilderOption {
	return func(c *controller) {
		c.input = src
	}
}

// WithSpeed is an option builder that sets the translation speed.
//
// Parameters:
//   - speed: meters per second of full stick deflection
//
// Returns:
//   - ControllerBuilderOption: a function that applies the speed option to a controller
func WithSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		c.speed = speed
	}
}

// WithRotationSpeed is an option builder that sets the turn rate multiplier.
//
// Parameters:
//   - speed: radians per frame per unit of smoothed input
//
// Returns:
//   - ControllerBuilderOption: a function that applies the rotation speed option to a controller
func WithRotationSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		c.rotationSpeed = speed
	}
}
