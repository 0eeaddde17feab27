package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter turns glTF/GLB assets into model.ImportedModel values.
type gltfImporter interface {
	// Import parses the asset at path and extracts meshes, skeleton and animations.
	//
	// Parameters:
	//   - path: the .gltf or .glb file path
	//
	// Returns:
	//   - *model.ImportedModel: the imported data
	//   - error: an error if parsing or extraction fails
	Import(path string) (*model.ImportedModel, error)

	// ImportBytes is Import for in-memory data.
	//
	// Parameters:
	//   - data: the raw file contents
	//   - baseDir: directory used for relative buffer URIs
	//   - name: fallback model name when the asset does not carry one
	//
	// Returns:
	//   - *model.ImportedModel: the imported data
	//   - error: an error if parsing or extraction fails
	ImportBytes(data []byte, baseDir, name string) (*model.ImportedModel, error)

	// ImportAnimations parses the asset at path and returns only its clips.
	// A single unnamed clip is named after the file stem.
	//
	// Parameters:
	//   - path: the .gltf or .glb file path
	//
	// Returns:
	//   - []*model.AnimationClip: the clips, with bone names for retargeting
	//   - error: an error if parsing or extraction fails
	ImportAnimations(path string) ([]*model.AnimationClip, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, fileStem(path))
}

func (imp *gltfImporterImpl) ImportBytes(data []byte, baseDir, name string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseBytes(data, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(parser, name)
}

func (imp *gltfImporterImpl) ImportAnimations(path string) ([]*model.AnimationClip, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc := parser.Document()

	_, nodeToBone, err := imp.extractSkeleton(parser)
	if err != nil {
		return nil, err
	}

	clips, err := newGLTFAnimationExtractor(parser).ExtractAll(nodeToBone)
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	if len(clips) == 1 && doc.Animations[0].Name == "" {
		clips[0].Name = fileStem(path)
	}
	return clips, nil
}

func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}
	if len(doc.ExtensionsRequired) > 0 {
		slog.Debug("loader: asset requires extensions", "name", fallbackName, "extensions", doc.ExtensionsRequired)
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	skeleton, nodeToBone, err := imp.extractSkeleton(parser)
	if err != nil {
		return nil, err
	}

	var animations []*model.AnimationClip
	if len(doc.Animations) > 0 {
		animations, err = newGLTFAnimationExtractor(parser).ExtractAll(nodeToBone)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
	}

	// a skeleton made up from plain nodes is only worth keeping if something animates it
	if len(doc.Skins) == 0 && len(animations) == 0 {
		skeleton = nil
	}

	return &model.ImportedModel{
		Name:       gltfModelName(doc, fallbackName),
		Meshes:     meshes,
		Skeleton:   skeleton,
		Animations: animations,
	}, nil
}

// extractSkeleton picks the skin of the first skinned mesh (or skin 0), falling back to the
// node hierarchy for assets without skins.
func (imp *gltfImporterImpl) extractSkeleton(parser gltfParser) (*model.Skeleton, map[int]int32, error) {
	doc := parser.Document()
	if len(doc.Skins) == 0 {
		skeleton, nodeToBone := nodeHierarchySkeleton(doc)
		return skeleton, nodeToBone, nil
	}

	extractor := newGLTFSkeletonExtractor(parser)
	skinIndex := 0
	for meshIdx := range doc.Meshes {
		if si := extractor.FindSkinForMesh(meshIdx); si >= 0 {
			skinIndex = si
			break
		}
	}

	skeleton, nodeToBone, err := extractor.ExtractSkeleton(skinIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("skeleton extraction failed: %w", err)
	}
	return skeleton, nodeToBone, nil
}

func gltfModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" && name != "Scene" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_model"
}

// fileStem returns the base name of path without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
