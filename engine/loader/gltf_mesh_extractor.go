package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor summarizes glTF mesh primitives: counts and bounds, no vertex data.
type gltfMeshExtractor interface {
	// ExtractAllMeshes summarizes every primitive of every mesh in document order.
	//
	// Returns:
	//   - []model.ImportedMesh: one entry per primitive
	//   - error: an error if a primitive has no usable POSITION attribute
	ExtractAllMeshes() ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var meshes []model.ImportedMesh
	for meshIdx := range doc.Meshes {
		mesh := &doc.Meshes[meshIdx]
		for primIdx := range mesh.Primitives {
			summary, err := e.summarizePrimitive(&mesh.Primitives[primIdx])
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, primIdx, err)
			}

			summary.Name = mesh.Name
			if summary.Name == "" {
				summary.Name = fmt.Sprintf("mesh_%d", meshIdx)
			}
			if len(mesh.Primitives) > 1 {
				summary.Name = fmt.Sprintf("%s_%d", summary.Name, primIdx)
			}
			meshes = append(meshes, summary)
		}
	}
	return meshes, nil
}

func (e *gltfMeshExtractorImpl) summarizePrimitive(prim *gltfPrimitive) (model.ImportedMesh, error) {
	var out model.ImportedMesh
	doc := e.parser.Document()

	posIdx, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return out, fmt.Errorf("primitive has no %s attribute", gltfAttributePosition)
	}
	if posIdx < 0 || posIdx >= len(doc.Accessors) {
		return out, fmt.Errorf("position accessor %d out of range", posIdx)
	}
	acc := &doc.Accessors[posIdx]
	out.VertexCount = acc.Count

	if prim.Indices != nil && *prim.Indices >= 0 && *prim.Indices < len(doc.Accessors) {
		out.IndexCount = doc.Accessors[*prim.Indices].Count
	}

	// POSITION accessors are required to carry min/max, which also covers compressed primitives
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		out.BoundingMin = [3]float32(acc.Min)
		out.BoundingMax = [3]float32(acc.Max)
		return out, nil
	}

	positions, err := e.parser.ReadVec3Accessor(posIdx)
	if err != nil {
		return out, fmt.Errorf("failed to read positions: %w", err)
	}
	if len(positions) == 0 {
		return out, nil
	}

	lo := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, p := range positions {
		for axis := range 3 {
			lo[axis] = min(lo[axis], p[axis])
			hi[axis] = max(hi[axis], p[axis])
		}
	}
	out.BoundingMin, out.BoundingMax = lo, hi
	return out, nil
}
