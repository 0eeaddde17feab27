package loader

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// gltfLoaderBackendImpl is the implementation of the gltfLoaderBackend interface.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend handles .gltf and .glb files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadBytes(name string, data []byte, baseDir string) (*model.ImportedModel, error) {
	return b.importer.ImportBytes(data, baseDir, name)
}

func (b *gltfLoaderBackendImpl) LoadAnimations(path string) ([]*model.AnimationClip, error) {
	return b.importer.ImportAnimations(path)
}
