package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the vertical axis of the showroom. Placement owns motion along it.
var WorldUp = mgl32.Vec3{0, 1, 0}

// Perspective creates a perspective projection matrix.
// Uses the WebGPU clip space depth range [0, 1] rather than the OpenGL [-1, 1] that mgl32.Perspective targets.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a view matrix transforming world coordinates into camera space.
// A degenerate eye/center pair (same point) yields the identity matrix instead of NaNs.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically WorldUp)
//
// Returns:
//   - mgl32.Mat4: the column-major view matrix
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	if eye.ApproxEqual(center) {
		return mgl32.Ident4()
	}
	return mgl32.LookAtV(eye, center, up)
}

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around the X, Y and Z axes
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func BuildModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(EulerToQuat(rotation).Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// EulerToQuat converts X/Y/Z Euler angles (radians) to a quaternion using the Y * X * Z order of BuildModelMatrix.
//
// Parameters:
//   - rotation: rotation angles in radians around the X, Y and Z axes
//
// Returns:
//   - mgl32.Quat: the equivalent unit quaternion
func EulerToQuat(rotation mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(rotation.Y(), rotation.X(), rotation.Z(), mgl32.YXZ)
}

// YawQuat builds a rotation of angle radians about WorldUp.
func YawQuat(angle float32) mgl32.Quat {
	return mgl32.QuatRotate(angle, WorldUp)
}

// RotateVec rotates v by the unit quaternion q.
func RotateVec(q mgl32.Quat, v mgl32.Vec3) mgl32.Vec3 {
	return q.Rotate(v)
}

// QuatFromArray converts an (x, y, z, w) array as stored in keyframes into an mgl32.Quat.
func QuatFromArray(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// QuatToArray converts q into the (x, y, z, w) array layout used by keyframes.
func QuatToArray(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// RaySphere intersects a ray with a sphere.
//
// Parameters:
//   - origin: ray origin
//   - dir: ray direction (need not be normalized, must be non-zero)
//   - center: sphere center
//   - radius: sphere radius
//
// Returns:
//   - float32: distance along the normalized ray to the nearest hit in front of the origin
//   - bool: true if the ray hits the sphere
func RaySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	if dir.Len() == 0 {
		return 0, false
	}
	d := dir.Normalize()
	oc := origin.Sub(center)
	b := oc.Dot(d)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		// origin inside the sphere
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
