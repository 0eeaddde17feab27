package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedView struct {
	eye, target mgl32.Vec3
}

func (f fixedView) Eye() mgl32.Vec3    { return f.eye }
func (f fixedView) Target() mgl32.Vec3 { return f.target }

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d: want %v, got %v", i, want, got)
	}
}

func TestCameraWithoutSourceKeepsIdentityView(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
	assert.Nil(t, c.Source())
	assert.NotPanics(t, c.Update)
}

func TestCameraFollowsSource(t *testing.T) {
	c := NewCamera(WithSource(fixedView{eye: mgl32.Vec3{0, 1.6, 0}, target: mgl32.Vec3{0, 1.6, -1}}))
	assertVec(t, mgl32.Vec3{0, 1.6, 0}, c.Eye())

	// a point straight ahead lands on the view axis
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 1.6, -5, 1})
	assertVec(t, mgl32.Vec3{0, 0, -5}, p.Vec3())

	c.SetSource(fixedView{eye: mgl32.Vec3{3, 0, 0}, target: mgl32.Vec3{0, 0, 0}})
	assertVec(t, mgl32.Vec3{3, 0, 0}, c.Eye())
}

func TestCameraSetAspectIgnoresInvalid(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(1.5)
	assert.Equal(t, float32(1.5), c.Aspect())
}

func TestScreenRay(t *testing.T) {
	c := NewCamera(
		WithFov(math.Pi/2),
		WithAspect(1),
		WithClipPlanes(0.1, 100),
		WithSource(fixedView{eye: mgl32.Vec3{0, 0, 5}, target: mgl32.Vec3{}}),
	)

	origin, dir, ok := c.ScreenRay(50, 50, 100, 100)
	require.True(t, ok)
	assertVec(t, mgl32.Vec3{0, 0, 5}, origin)
	assertVec(t, mgl32.Vec3{0, 0, -1}, dir)

	// right edge of a 90 degree frustum is 45 degrees off axis
	_, dir, ok = c.ScreenRay(100, 50, 100, 100)
	require.True(t, ok)
	s := float32(math.Sqrt2 / 2)
	assertVec(t, mgl32.Vec3{s, 0, -s}, dir)

	// top of the window points up
	_, dir, ok = c.ScreenRay(50, 0, 100, 100)
	require.True(t, ok)
	assert.Greater(t, dir.Y(), float32(0))

	_, _, ok = c.ScreenRay(1, 1, 0, 100)
	assert.False(t, ok)
}

func TestOrbitDefaults(t *testing.T) {
	oc := NewOrbitController()
	assert.Equal(t, DefaultOrbitRadius, oc.Radius())
	assert.Equal(t, DefaultOrbitElevation, oc.Elevation())

	e := float64(DefaultOrbitElevation)
	want := mgl32.Vec3{0, float32(6 * math.Sin(e)), float32(6 * math.Cos(e))}
	assertVec(t, want, oc.Eye())
	assertVec(t, mgl32.Vec3{}, oc.Target())
}

func TestOrbitZoomClamps(t *testing.T) {
	oc := NewOrbitController()
	oc.Zoom(4)
	assert.InDelta(t, 4, oc.Radius(), 1e-5)
	oc.Zoom(100)
	assert.Equal(t, float32(1), oc.Radius())
	oc.Zoom(-1000)
	assert.Equal(t, float32(30), oc.Radius())
	assert.InDelta(t, 30, oc.Eye().Sub(oc.Target()).Len(), 1e-3)
}

func TestOrbitRotation(t *testing.T) {
	oc := NewOrbitController(WithAngles(0, 0), WithTarget(mgl32.Vec3{0, 1, -5}))
	assertVec(t, mgl32.Vec3{0, 1, 1}, oc.Eye())

	oc.Drag(100, 0)
	assert.InDelta(t, -0.5, oc.Azimuth(), 1e-5)
	assert.InDelta(t, 6, oc.Eye().Sub(oc.Target()).Len(), 1e-4)

	oc.Orbit(0, 1000)
	assert.InDelta(t, math.Pi/2-0.1, oc.Elevation(), 1e-5)
	oc.Orbit(0, -2000)
	assert.InDelta(t, -math.Pi/2+0.1, oc.Elevation(), 1e-5)
}

func TestOrbitPanMovesEyeAndTarget(t *testing.T) {
	oc := NewOrbitController(WithAngles(0, 0))
	before := oc.Eye()

	oc.Pan(1, 0, 0)
	assertVec(t, mgl32.Vec3{0.05, 0, 0}, oc.Target())
	assertVec(t, before.Add(mgl32.Vec3{0.05, 0, 0}), oc.Eye())

	oc.Pan(0, 0, 2)
	assertVec(t, mgl32.Vec3{0.05, 0, -0.1}, oc.Target())
	assert.Equal(t, DefaultOrbitRadius, oc.Radius())
}

func TestOrbitDrivesCamera(t *testing.T) {
	oc := NewOrbitController(WithRadius(10), WithSpeeds(0, 0, 2, 0))
	c := NewCamera(WithSource(oc))

	oc.Zoom(1)
	c.Update()
	assertVec(t, oc.Eye(), c.Eye())
	assert.InDelta(t, 8, oc.Radius(), 1e-5)
}
