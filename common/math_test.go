package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// assertVec3InDelta compares components with an absolute tolerance; mgl32's
// relative comparison never matches float noise against an exact zero.
func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		i, n, want int
	}{
		{0, 3, 0},
		{3, 3, 0},
		{-1, 3, 2},
		{-4, 3, 2},
		{7, 5, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Wrap(c.i, c.n), "Wrap(%d, %d)", c.i, c.n)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 4))
	assert.Equal(t, 4, Clamp(9, 0, 4))
	assert.Equal(t, float32(0.3), Clamp(float32(0.3), 0.2, 0.5))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, float32(0), Coalesce[float32]())
}

func TestYawQuat(t *testing.T) {
	got := RotateVec(YawQuat(math.Pi/2), mgl32.Vec3{1, 0, 0})
	assertVec3InDelta(t, mgl32.Vec3{0, 0, -1}, got)

	got = RotateVec(YawQuat(0), mgl32.Vec3{0, 0, 1})
	assert.True(t, got.ApproxEqual(mgl32.Vec3{0, 0, 1}))
}

func TestQuatArrayRoundTrip(t *testing.T) {
	q := YawQuat(0.7)
	assert.True(t, QuatFromArray(QuatToArray(q)).ApproxEqual(q))
}

func TestBuildModelMatrix(t *testing.T) {
	t.Run("translation and scale", func(t *testing.T) {
		m := BuildModelMatrix(mgl32.Vec3{3, 0, -5}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
		assert.True(t, m.Col(3).ApproxEqual(mgl32.Vec4{3, 0, -5, 1}))
		assert.InDelta(t, 2, m.At(0, 0), 1e-6)
		assert.InDelta(t, 2, m.At(1, 1), 1e-6)
	})

	t.Run("yaw", func(t *testing.T) {
		m := BuildModelMatrix(mgl32.Vec3{}, mgl32.Vec3{0, math.Pi / 2, 0}, mgl32.Vec3{1, 1, 1})
		got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
		assertVec3InDelta(t, mgl32.Vec3{0, 0, -1}, got)
	})
}

func TestLookAtDegenerate(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, mgl32.Ident4(), LookAt(p, p, WorldUp))
}

func TestRaySphere(t *testing.T) {
	center := mgl32.Vec3{0, 0.1, -1}

	dist, hit := RaySphere(mgl32.Vec3{0, 0.1, 0}, mgl32.Vec3{0, 0, -1}, center, 0.05)
	assert.True(t, hit)
	assert.InDelta(t, 0.95, dist, 1e-5)

	_, hit = RaySphere(mgl32.Vec3{0, 0.1, 0}, mgl32.Vec3{0, 0, 1}, center, 0.05)
	assert.False(t, hit, "sphere behind the ray")

	_, hit = RaySphere(mgl32.Vec3{0.2, 0.1, 0}, mgl32.Vec3{0, 0, -1}, center, 0.05)
	assert.False(t, hit, "ray passes beside the sphere")

	_, hit = RaySphere(mgl32.Vec3{}, mgl32.Vec3{}, center, 0.05)
	assert.False(t, hit, "zero direction")
}
