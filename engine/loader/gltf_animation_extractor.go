package loader

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor converts glTF animations into model.AnimationClip values.
type gltfAnimationExtractor interface {
	// ExtractAnimation converts one animation. Channels targeting nodes missing from
	// nodeToBone are skipped, as are morph target weights.
	//
	// Parameters:
	//   - animIndex: index into the document's animations
	//   - nodeToBone: glTF node index to bone index
	//
	// Returns:
	//   - *model.AnimationClip: the clip, named "clip_<n>" when the file has no name for it
	//   - error: an error if a sampler or its accessors are invalid
	ExtractAnimation(animIndex int, nodeToBone map[int]int32) (*model.AnimationClip, error)

	// ExtractAll converts every animation in document order.
	//
	// Parameters:
	//   - nodeToBone: glTF node index to bone index
	//
	// Returns:
	//   - []*model.AnimationClip: the clips
	//   - error: the first extraction error
	ExtractAll(nodeToBone map[int]int32) ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAll(nodeToBone map[int]int32) ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	clips := make([]*model.AnimationClip, 0, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i, nodeToBone)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, nodeToBone map[int]int32) (*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("clip_%d", animIndex)
	}

	byBone := make(map[int32]*model.AnimationChannel)
	var duration float32

	for i, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Target.Path == gltfAnimPathWeights {
			continue
		}
		node := *ch.Target.Node
		bone, ok := nodeToBone[node]
		if !ok {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		if len(times) > 0 {
			duration = max(duration, times[len(times)-1])
		}

		out, exists := byBone[bone]
		if !exists {
			out = &model.AnimationChannel{BoneIndex: bone}
			if node >= 0 && node < len(doc.Nodes) {
				out.BoneName = doc.Nodes[node].Name
			}
			byBone[bone] = out
		}

		// cubic spline samplers store (in-tangent, value, out-tangent) per key; only the value is kept
		stride, offset := 1, 0
		if sampler.Interpolation == gltfInterpolationCubicSpline {
			stride, offset = 3, 1
		}

		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			values, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", name, i, ch.Target.Path, err)
			}
			keys := make([]model.VectorKeyframe, 0, len(times))
			for k, t := range times {
				if idx := k*stride + offset; idx < len(values) {
					keys = append(keys, model.VectorKeyframe{Time: t, Value: values[idx]})
				}
			}
			if ch.Target.Path == gltfAnimPathTranslation {
				out.PositionKeys = keys
			} else {
				out.ScaleKeys = keys
			}

		case gltfAnimPathRotation:
			values, err := e.parser.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", name, i, err)
			}
			keys := make([]model.QuaternionKeyframe, 0, len(times))
			for k, t := range times {
				if idx := k*stride + offset; idx < len(values) {
					keys = append(keys, model.QuaternionKeyframe{Time: t, Value: values[idx]})
				}
			}
			out.RotationKeys = keys
		}
	}

	channels := make([]model.AnimationChannel, 0, len(byBone))
	for _, ch := range byBone {
		channels = append(channels, *ch)
	}
	slices.SortFunc(channels, func(a, b model.AnimationChannel) int {
		return int(a.BoneIndex - b.BoneIndex)
	})

	return &model.AnimationClip{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: 1.0, // glTF timestamps are always in seconds
		Channels:       channels,
	}, nil
}
