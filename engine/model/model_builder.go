package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithSourcePath is an option builder that records the file the Model was imported from.
//
// Parameters:
//   - path: the source file path
//
// Returns:
//   - ModelBuilderOption: a function that applies the source path option to a model
func WithSourcePath(path string) ModelBuilderOption {
	return func(m *model) {
		m.sourcePath = path
	}
}

// WithSkinned is an option builder that sets whether the Model uses skeletal animation.
// A non-empty skeleton marks the model as skinned regardless of this option.
//
// Parameters:
//   - skinned: true if the model has bone data
//
// Returns:
//   - ModelBuilderOption: a function that applies the skinned option to a model
func WithSkinned(skinned bool) ModelBuilderOption {
	return func(m *model) {
		m.skinned = skinned
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the Model.
//
// Parameters:
//   - skeleton: the skeleton, or nil for static models
//
// Returns:
//   - ModelBuilderOption: a function that applies the skeleton option to a model
func WithSkeleton(skeleton *Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skeleton = skeleton
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
//
// Parameters:
//   - animations: the clips in load order
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations []*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		m.animations = animations
	}
}

// WithMeshes is an option builder that sets the mesh summaries of the Model.
// When no explicit bounding radius is given it is derived from these meshes.
//
// Parameters:
//   - meshes: one summary per mesh primitive
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes []ImportedMesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithBoundingRadius is an option builder that overrides the bounding radius of the Model.
//
// Parameters:
//   - radius: the bounding radius
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}

// FromImported is an option builder that copies everything an importer produced into the Model.
//
// Parameters:
//   - imported: the imported model data
//
// Returns:
//   - ModelBuilderOption: a function that applies the imported data to a model
func FromImported(imported *ImportedModel) ModelBuilderOption {
	return func(m *model) {
		if imported == nil {
			return
		}
		m.name = imported.Name
		m.skeleton = imported.Skeleton
		m.animations = imported.Animations
		m.meshes = imported.Meshes
	}
}
