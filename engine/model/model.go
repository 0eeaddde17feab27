package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	sourcePath     string
	skinned        bool
	skeleton       *Skeleton
	animations     []*AnimationClip
	meshes         []ImportedMesh
	boundingRadius float32
}

// Model defines the interface for a loaded 3D model.
// A Model is a CPU-side container holding the skeleton hierarchy, the animation clips and a
// summary of the mesh geometry. It is produced by the Loader after importing a model file and
// is treated as read-only afterwards, so one Model can back any number of placed objects.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// SourcePath retrieves the path the model was imported from.
	//
	// Returns:
	//   - string: the source path, empty for models built in memory
	SourcePath() string

	// Skinned reports whether this model uses skeletal animation.
	//
	// Returns:
	//   - bool: true if the model has bone data
	Skinned() bool

	// Skeleton retrieves the bone hierarchy for this model.
	// Returns nil for static (non-skinned) models.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// Meshes retrieves the mesh summaries of this model.
	//
	// Returns:
	//   - []ImportedMesh: one entry per mesh primitive
	Meshes() []ImportedMesh

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips in load order.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int

	// BoundingRadius returns the radius of the sphere centered at the model origin enclosing all meshes.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the newly created Model instance
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	if m.skeleton != nil && len(m.skeleton.Bones) > 0 {
		m.skinned = true
	}
	if m.boundingRadius == 0 {
		m.boundingRadius = boundingRadius(m.meshes)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) SourcePath() string {
	return m.sourcePath
}

func (m *model) Skinned() bool {
	return m.skinned
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) Meshes() []ImportedMesh {
	return m.meshes
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

// boundingRadius returns the distance from the origin to the farthest AABB corner of any mesh.
func boundingRadius(meshes []ImportedMesh) float32 {
	var radius float32
	for _, mesh := range meshes {
		var corner mgl32.Vec3
		for axis := range 3 {
			corner[axis] = max(float32(math.Abs(float64(mesh.BoundingMin[axis]))), float32(math.Abs(float64(mesh.BoundingMax[axis]))))
		}
		radius = max(radius, corner.Len())
	}
	return radius
}
