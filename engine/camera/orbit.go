package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultOrbitRadius frames the showroom row from in front of the viewer.
	DefaultOrbitRadius float32 = 6
	// DefaultOrbitElevation is the initial tilt above the horizon.
	DefaultOrbitElevation float32 = math.Pi / 12
)

// orbitController is the implementation of the OrbitController interface.
type orbitController struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

// OrbitController is the desktop fallback viewpoint. It orbits a pivot on spherical
// coordinates (radius, azimuth, elevation) and pans the pivot along the view axes.
// It implements ViewSource.
type OrbitController interface {
	ViewSource

	// SetTarget moves the pivot and recomputes the eye.
	//
	// Parameters:
	//   - target: world space pivot
	SetTarget(target mgl32.Vec3)

	// Zoom moves toward the pivot for positive delta, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Orbit rotates around the pivot by one keyboard step in each direction given.
	//
	// Parameters:
	//   - yawSteps: positive steps orbit right
	//   - pitchSteps: positive steps tilt up, clamped to the elevation bounds
	Orbit(yawSteps, pitchSteps float32)

	// Drag rotates around the pivot from a mouse delta.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels
	Drag(dx, dy float64)

	// Pan translates eye and pivot together along the view axes.
	//
	// Parameters:
	//   - right: movement along the local right axis
	//   - up: movement along world up
	//   - forward: movement along the ground projected view direction
	Pan(right, up, forward float32)

	// Radius returns the distance from the pivot.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// Azimuth returns the horizontal angle around the pivot, 0 on +Z.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the vertical angle above the horizon.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an OrbitController around the origin with the provided options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the controller with its eye already placed
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu:               &sync.Mutex{},
		radius:           DefaultOrbitRadius,
		elevation:        DefaultOrbitElevation,
		minRadius:        1,
		maxRadius:        30,
		minElevation:     -math.Pi/2 + 0.1,
		maxElevation:     math.Pi/2 - 0.1,
		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         0.05,
	}
	for _, option := range options {
		option(oc)
	}
	oc.radius = common.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	oc.place()
	return oc
}

// place recomputes the eye from the spherical coordinates.
// Caller must hold the mutex.
func (oc *orbitController) place() {
	sinA, cosA := math.Sincos(float64(oc.azimuth))
	sinE, cosE := math.Sincos(float64(oc.elevation))
	offset := mgl32.Vec3{
		float32(cosE * sinA),
		float32(sinE),
		float32(cosE * cosA),
	}
	oc.eye = oc.target.Add(offset.Mul(oc.radius))
}

func (oc *orbitController) Eye() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.eye
}

func (oc *orbitController) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.place()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = common.Clamp(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
	oc.place()
}

func (oc *orbitController) Orbit(yawSteps, pitchSteps float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotate(yawSteps*oc.orbitSpeed, pitchSteps*oc.orbitSpeed)
}

func (oc *orbitController) Drag(dx, dy float64) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	s := float64(oc.mouseSensitivity)
	oc.rotate(float32(-dx*s), float32(dy*s))
}

// rotate applies an azimuth and elevation delta. Caller must hold the mutex.
func (oc *orbitController) rotate(dAzimuth, dElevation float32) {
	oc.azimuth = float32(math.Mod(float64(oc.azimuth+dAzimuth), 2*math.Pi))
	oc.elevation = common.Clamp(oc.elevation+dElevation, oc.minElevation, oc.maxElevation)
	oc.place()
}

func (oc *orbitController) Pan(right, up, forward float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	fwd := oc.target.Sub(oc.eye)
	fwd[1] = 0
	if fwd.Len() == 0 {
		return
	}
	fwd = fwd.Normalize()
	side := fwd.Cross(common.WorldUp).Normalize()

	delta := side.Mul(right).Add(common.WorldUp.Mul(up)).Add(fwd.Mul(forward)).Mul(oc.panSpeed)
	oc.target = oc.target.Add(delta)
	oc.eye = oc.eye.Add(delta)
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}
