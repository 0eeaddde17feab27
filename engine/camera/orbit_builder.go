package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithTarget sets the pivot the controller orbits.
//
// Parameters:
//   - target: world space pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the pivot
func WithTarget(target mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadius sets the initial distance from the pivot.
//
// Parameters:
//   - radius: distance, clamped to the radius bounds
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation.
//
// Parameters:
//   - azimuth: horizontal angle in radians, 0 on +Z
//   - elevation: vertical angle in radians, clamped to the elevation bounds
//
// Returns:
//   - OrbitControllerOption: functional option to set the angles
func WithAngles(azimuth, elevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - min: closest distance to the pivot
//   - max: farthest distance from the pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set radius bounds
func WithRadiusBounds(min, max float32) OrbitControllerOption {
	return func(oc *orbitController) {
		if min > 0 && max >= min {
			oc.minRadius = min
			oc.maxRadius = max
		}
	}
}

// WithSpeeds sets the input multipliers. Zero keeps the default.
//
// Parameters:
//   - orbit: radians per keyboard step
//   - mouse: radians per dragged pixel
//   - zoom: distance per scroll unit
//   - pan: distance per pan unit
//
// Returns:
//   - OrbitControllerOption: functional option to set the speeds
func WithSpeeds(orbit, mouse, zoom, pan float32) OrbitControllerOption {
	return func(oc *orbitController) {
		if orbit > 0 {
			oc.orbitSpeed = orbit
		}
		if mouse > 0 {
			oc.mouseSensitivity = mouse
		}
		if zoom > 0 {
			oc.zoomSpeed = zoom
		}
		if pan > 0 {
			oc.panSpeed = pan
		}
	}
}
