package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewSource provides the eye and look-at point a camera renders from.
// Both the orbit controller and the movement rig implement it.
type ViewSource interface {
	// Eye returns the viewpoint in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Target returns the point the viewpoint looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at point
	Target() mgl32.Vec3
}

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	eye                  mgl32.Vec3
	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	source ViewSource
}

// Camera holds perspective settings and computes view/projection matrices
// from an attached ViewSource each frame via Update().
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio, typically on window resize.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// ViewMatrix returns the world to camera matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the camera to clip space matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns Projection * View.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Eye returns the eye position used by the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Source returns the attached view source.
	//
	// Returns:
	//   - ViewSource: the source, or nil
	Source() ViewSource

	// SetSource attaches the view source the camera follows.
	// The scene swaps between the orbit controller and the movement rig this way.
	//
	// Parameters:
	//   - src: the new source
	SetSource(src ViewSource)

	// Update recomputes the matrices from the source. No-op without a source.
	Update()

	// ScreenRay converts a window position into a world space picking ray.
	//
	// Parameters:
	//   - x, y: the cursor position in pixels, origin top-left
	//   - width, height: the window size in pixels
	//
	// Returns:
	//   - origin: the ray origin (the eye)
	//   - dir: the unit ray direction
	//   - ok: false if the matrices are degenerate or the window has no area
	ScreenRay(x, y, width, height float32) (origin, dir mgl32.Vec3, ok bool)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new camera with the provided options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		up:                   common.WorldUp,
		fov:                  60.0 * (math.Pi / 180.0),
		aspect:               16.0 / 9.0,
		near:                 0.05,
		far:                  200.0,
		viewMatrix:           mgl32.Ident4(),
		projectionMatrix:     mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Source() ViewSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

func (c *cameraImpl) SetSource(src ViewSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = src
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) ScreenRay(x, y, width, height float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	if c.viewProjectionMatrix.Det() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	inv := c.viewProjectionMatrix.Inv()

	nx := 2*x/width - 1
	ny := 1 - 2*y/height
	near := inv.Mul4x1(mgl32.Vec4{nx, ny, 0, 1})
	far := inv.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	if near.W() == 0 || far.W() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	p0 := near.Vec3().Mul(1 / near.W())
	p1 := far.Vec3().Mul(1 / far.W())
	dir := p1.Sub(p0)
	if dir.Len() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return c.eye, dir.Normalize(), true
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// The view matrix is left alone without a source.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	if c.source != nil {
		c.eye = c.source.Eye()
		c.viewMatrix = common.LookAt(c.eye, c.source.Target(), c.up)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
