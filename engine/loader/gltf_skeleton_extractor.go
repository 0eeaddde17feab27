package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor builds model.Skeleton values out of glTF skins.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton builds the skeleton of one skin.
	// Bones are sorted so that every parent precedes its children.
	//
	// Parameters:
	//   - skinIndex: index into the document's skins
	//
	// Returns:
	//   - *model.Skeleton: the sorted skeleton
	//   - map[int]int32: glTF node index to sorted bone index, used to retarget animation channels
	//   - error: an error if the skin or its joints are invalid
	ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int32, error)

	// FindSkinForMesh returns the skin used by the first node that instantiates a mesh.
	//
	// Parameters:
	//   - meshIndex: index into the document's meshes
	//
	// Returns:
	//   - int: the skin index, or -1 if the mesh is never skinned
	FindSkinForMesh(meshIndex int) int
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) FindSkinForMesh(meshIndex int) int {
	doc := e.parser.Document()
	if doc == nil {
		return -1
	}
	for _, node := range doc.Nodes {
		if node.Mesh != nil && *node.Mesh == meshIndex && node.Skin != nil {
			return *node.Skin
		}
	}
	return -1
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int32, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, fmt.Errorf("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	var inverseBind [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBind, err = e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	parentOf := make(map[int]int, len(doc.Nodes))
	for nodeIdx, node := range doc.Nodes {
		for _, child := range node.Children {
			parentOf[child] = nodeIdx
		}
	}

	jointBone := make(map[int]int32, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, nodeIdx)
		}
		jointBone[nodeIdx] = int32(i)
	}

	bones := make([]model.Bone, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		node := &doc.Nodes[nodeIdx]
		bone := &bones[i]

		bone.Name = node.Name
		if bone.Name == "" {
			bone.Name = fmt.Sprintf("bone_%d", i)
		}
		bone.LocalTransform = gltfNodeTransform(node)
		bone.InverseBindMatrix = mgl32.Ident4()
		if i < len(inverseBind) {
			bone.InverseBindMatrix = inverseBind[i]
		}

		// the nearest ancestor that is also a joint becomes the parent bone
		bone.ParentIndex = -1
		cur, ok := parentOf[nodeIdx]
		for steps := 0; ok && steps < len(doc.Nodes); steps++ {
			if b, isJoint := jointBone[cur]; isJoint {
				bone.ParentIndex = b
				break
			}
			cur, ok = parentOf[cur]
		}
	}

	skeleton, oldToNew := sortBonesParentFirst(bones)

	nodeToBone := make(map[int]int32, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		nodeToBone[nodeIdx] = oldToNew[i]
	}
	return skeleton, nodeToBone, nil
}

// gltfNodeTransform reads a node's local transform from either its matrix or its TRS properties.
func gltfNodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return decomposeMatrix(mgl32.Mat4(*node.Matrix))
	}

	t := model.IdentityTransform()
	if node.Translation != nil {
		t.Translation = *node.Translation
	}
	if node.Rotation != nil {
		t.Rotation = *node.Rotation
	}
	if node.Scale != nil {
		t.Scale = *node.Scale
	}
	return t
}

// decomposeMatrix splits an affine column-major matrix without shear into translation, rotation and scale.
func decomposeMatrix(m mgl32.Mat4) model.Transform {
	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}

	var cols [3]mgl32.Vec3
	for c := range 3 {
		s := scale[c]
		if s < 1e-4 {
			s = 1
		}
		cols[c] = m.Col(c).Vec3().Mul(1 / s)
	}
	rot := mgl32.Mat3FromCols(cols[0], cols[1], cols[2])

	return model.Transform{
		Translation: [3]float32(m.Col(3).Vec3()),
		Rotation:    common.QuatToArray(mgl32.Mat4ToQuat(rot.Mat4()).Normalize()),
		Scale:       [3]float32(scale),
	}
}

// sortBonesParentFirst reorders bones breadth-first from the roots so that parents always
// precede children, which lets pose evaluation walk the slice once.
// Bones unreachable from any root (cycles in malformed files) are appended as roots.
func sortBonesParentFirst(bones []model.Bone) (*model.Skeleton, []int32) {
	children := make(map[int32][]int32, len(bones))
	var queue []int32
	for i, b := range bones {
		if b.ParentIndex < 0 {
			queue = append(queue, int32(i))
		} else {
			children[b.ParentIndex] = append(children[b.ParentIndex], int32(i))
		}
	}

	order := make([]int32, 0, len(bones))
	visited := make([]bool, len(bones))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		order = append(order, cur)
		queue = append(queue, children[cur]...)
	}
	for i := range bones {
		if !visited[i] {
			bones[i].ParentIndex = -1
			order = append(order, int32(i))
		}
	}

	oldToNew := make([]int32, len(bones))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = int32(newIdx)
	}

	sk := &model.Skeleton{
		Bones:           make([]model.Bone, len(bones)),
		BoneNameToIndex: make(map[string]int32, len(bones)),
	}
	for newIdx, oldIdx := range order {
		b := bones[oldIdx]
		if b.ParentIndex >= 0 {
			b.ParentIndex = oldToNew[b.ParentIndex]
		} else {
			sk.RootBoneIndices = append(sk.RootBoneIndices, int32(newIdx))
		}
		sk.Bones[newIdx] = b
		sk.BoneNameToIndex[b.Name] = int32(newIdx)
	}
	return sk, oldToNew
}

// nodeHierarchySkeleton treats every node of the document as a bone.
// Rigid models animate plain nodes (wheels, doors) rather than skin joints; this gives
// their clips a skeleton to be sampled against.
func nodeHierarchySkeleton(doc *gltfDocument) (*model.Skeleton, map[int]int32) {
	bones := make([]model.Bone, len(doc.Nodes))
	for i := range doc.Nodes {
		bones[i] = model.Bone{
			Name:              doc.Nodes[i].Name,
			ParentIndex:       -1,
			InverseBindMatrix: mgl32.Ident4(),
			LocalTransform:    gltfNodeTransform(&doc.Nodes[i]),
		}
		if bones[i].Name == "" {
			bones[i].Name = fmt.Sprintf("node_%d", i)
		}
	}
	for parent, node := range doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < len(bones) && child != parent {
				bones[child].ParentIndex = int32(parent)
			}
		}
	}

	skeleton, oldToNew := sortBonesParentFirst(bones)
	nodeToBone := make(map[int]int32, len(bones))
	for i := range bones {
		nodeToBone[i] = oldToNew[i]
	}
	return skeleton, nodeToBone
}
