package game_object

import (
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/animator"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// HeadBoneName is the bone head-follow turns toward the viewer.
	HeadBoneName = "Head"
	// MaxHeadYaw limits how far the head turns sideways, in radians.
	MaxHeadYaw = 70 * math.Pi / 180
	// MaxHeadPitch limits how far the head tilts up or down, in radians.
	MaxHeadPitch = 30 * math.Pi / 180
)

type gameObject struct {
	mu *sync.Mutex

	id      string
	enabled atomic.Bool
	mdl     model.Model
	anim    animator.Controller

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	headFollow bool
	headIndex  int32

	pose     []model.Transform
	world    []mgl32.Mat4
	skinning []mgl32.Mat4
}

// GameObject is one placement in the showroom: a model at a position, Euler rotation and scale,
// optionally driven by an animation controller and optionally turning its head toward the viewer.
type GameObject interface {
	// ID returns the placement identifier from the layout.
	//
	// Returns:
	//   - string: the ID
	ID() string

	// Enabled returns whether the object is drawn and updated.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled toggles drawing and updating. Objects start disabled until their model loads.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the loaded model, or nil while loading.
	//
	// Returns:
	//   - model.Model: the model or nil
	Model() model.Model

	// SetModel attaches a loaded model and locates its head bone.
	//
	// Parameters:
	//   - m: the model
	SetModel(m model.Model)

	// Animator returns the animation controller, or nil for static models.
	//
	// Returns:
	//   - animator.Controller: the controller or nil
	Animator() animator.Controller

	// SetAnimator attaches an animation controller.
	//
	// Parameters:
	//   - anim: the controller
	SetAnimator(anim animator.Controller)

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the object.
	//
	// Parameters:
	//   - p: the world position
	SetPosition(p mgl32.Vec3)

	// Rotation returns the Euler rotation in radians around X, Y and Z.
	//
	// Returns:
	//   - mgl32.Vec3: the rotation
	Rotation() mgl32.Vec3

	// SetRotation sets the Euler rotation.
	//
	// Parameters:
	//   - r: radians around X, Y and Z
	SetRotation(r mgl32.Vec3)

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - s: the scale
	SetScale(s mgl32.Vec3)

	// ModelMatrix returns translation * rotation * scale.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	ModelMatrix() mgl32.Mat4

	// HeadFollow reports whether the head turns toward the viewer.
	//
	// Returns:
	//   - bool: true if enabled
	HeadFollow() bool

	// Update advances the animator and applies head-follow on top of the sampled pose.
	//
	// Parameters:
	//   - dt: elapsed seconds
	//   - viewpoint: the viewer's eye in world space
	Update(dt float32, viewpoint mgl32.Vec3)

	// Pose returns the local bone transforms computed by the last Update.
	//
	// Returns:
	//   - []model.Transform: one transform per bone, or nil without a skeleton
	Pose() []model.Transform

	// SkinningMatrices returns the per-bone skinning matrices computed by the last Update.
	//
	// Returns:
	//   - []mgl32.Mat4: one matrix per bone, or nil without a skeleton
	SkinningMatrices() []mgl32.Mat4
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:        &sync.Mutex{},
		scale:     mgl32.Vec3{1, 1, 1},
		headIndex: -1,
	}
	for _, option := range options {
		option(obj)
	}
	obj.locateHead()
	return obj
}

func (g *gameObject) ID() string {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
	g.locateHeadLocked()
}

func (g *gameObject) Animator() animator.Controller {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.anim
}

func (g *gameObject) SetAnimator(anim animator.Controller) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.anim = anim
	g.locateHeadLocked()
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = p
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) SetRotation(r mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = r
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = s
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return common.BuildModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) HeadFollow() bool {
	return g.headFollow
}

func (g *gameObject) Update(dt float32, viewpoint mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sk := g.skeletonLocked()
	if sk == nil {
		return
	}

	var src []model.Transform
	if g.anim != nil {
		g.anim.Update(dt)
		src = g.anim.Pose()
	}
	if len(src) != len(sk.Bones) {
		src = sk.RestPose()
	}
	g.pose = append(g.pose[:0], src...)

	if g.headFollow && g.headIndex >= 0 {
		g.turnHead(sk, viewpoint)
	}

	g.world = animator.WorldMatrices(sk, g.pose)
	g.skinning = animator.SkinningMatrices(sk, g.world)
}

func (g *gameObject) Pose() []model.Transform {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pose
}

func (g *gameObject) SkinningMatrices() []mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.skinning
}

// --- Head Follow ---

// turnHead rotates the head bone so its forward (+Z in model space) points at the viewpoint,
// on top of whatever the animation sampled. Caller must hold the mutex.
func (g *gameObject) turnHead(sk *model.Skeleton, viewpoint mgl32.Vec3) {
	world := animator.WorldMatrices(sk, g.pose)
	h := g.headIndex

	inv := common.BuildModelMatrix(g.position, g.rotation, g.scale).Inv()
	local := inv.Mul4x1(viewpoint.Vec4(1)).Vec3()
	dir := local.Sub(world[h].Col(3).Vec3())
	if dir.Len() < 1e-4 {
		return
	}

	yaw := common.Clamp(math.Atan2(float64(dir.X()), float64(dir.Z())), -MaxHeadYaw, MaxHeadYaw)
	flat := math.Hypot(float64(dir.X()), float64(dir.Z()))
	pitch := common.Clamp(math.Atan2(float64(dir.Y()), flat), -MaxHeadPitch, MaxHeadPitch)
	delta := common.YawQuat(float32(yaw)).Mul(mgl32.QuatRotate(float32(-pitch), mgl32.Vec3{1, 0, 0}))

	parent := mgl32.QuatIdent()
	if p := sk.Bones[h].ParentIndex; p >= 0 {
		parent = rotationOf(world[p])
	}
	rot := common.QuatFromArray(g.pose[h].Rotation)
	turned := parent.Inverse().Mul(delta).Mul(parent).Mul(rot).Normalize()
	g.pose[h].Rotation = common.QuatToArray(turned)
}

// rotationOf extracts the rotation of an affine matrix, ignoring its scale.
func rotationOf(m mgl32.Mat4) mgl32.Quat {
	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	if c0.Len() == 0 || c1.Len() == 0 || c2.Len() == 0 {
		return mgl32.QuatIdent()
	}
	r := mgl32.Mat3FromCols(c0.Normalize(), c1.Normalize(), c2.Normalize())
	return mgl32.Mat4ToQuat(r.Mat4()).Normalize()
}

func (g *gameObject) locateHead() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locateHeadLocked()
}

// locateHeadLocked finds the head bone, accepting namespaced names such as "mixamorig:Head".
// Caller must hold the mutex.
func (g *gameObject) locateHeadLocked() {
	g.headIndex = -1
	sk := g.skeletonLocked()
	if sk == nil {
		return
	}
	if idx, ok := sk.FindBone(HeadBoneName); ok {
		g.headIndex = idx
		return
	}
	for i, b := range sk.Bones {
		if strings.HasSuffix(b.Name, ":"+HeadBoneName) {
			g.headIndex = int32(i)
			return
		}
	}
}

// skeletonLocked prefers the animator's skeleton, then the model's. Caller must hold the mutex.
func (g *gameObject) skeletonLocked() *model.Skeleton {
	if g.anim != nil {
		if sk := g.anim.Skeleton(); sk != nil {
			return sk
		}
	}
	if g.mdl != nil {
		return g.mdl.Skeleton()
	}
	return nil
}
