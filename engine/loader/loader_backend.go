package loader

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// loaderBackend defines the interface for format-specific model importers.
// Each backend handles one or more file formats and produces model.ImportedModel values.
type loaderBackend interface {
	// Load imports a full model (meshes, skeleton, animations) from a file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: an error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadBytes imports a full model from in-memory data.
	//
	// Parameters:
	//   - name: the model name used when the data carries none
	//   - data: the raw file contents
	//   - baseDir: directory used to resolve external references
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: an error if loading fails
	LoadBytes(name string, data []byte, baseDir string) (*model.ImportedModel, error)

	// LoadAnimations imports only the animation clips of a file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - []*model.AnimationClip: the clips
	//   - error: an error if loading fails
	LoadAnimations(path string) ([]*model.AnimationClip, error)
}
