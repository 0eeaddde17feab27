package model

import "strings"

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// Clone returns a deep copy of the clip. Keyframe slices are not shared with the receiver.
//
// Returns:
//   - *AnimationClip: the copy, or nil for a nil receiver
func (c *AnimationClip) Clone() *AnimationClip {
	if c == nil {
		return nil
	}

	out := *c
	out.Channels = make([]AnimationChannel, len(c.Channels))
	for i, ch := range c.Channels {
		out.Channels[i] = AnimationChannel{
			BoneIndex:    ch.BoneIndex,
			BoneName:     ch.BoneName,
			PositionKeys: append([]VectorKeyframe(nil), ch.PositionKeys...),
			RotationKeys: append([]QuaternionKeyframe(nil), ch.RotationKeys...),
			ScaleKeys:    append([]VectorKeyframe(nil), ch.ScaleKeys...),
		}
	}
	return &out
}

// WithoutVerticalMotion returns a copy of the clip in which no channel moves its bone along the Y axis.
// Position keys keep the Y of the bone's rest translation in skeleton, so the bone stays at its
// bind height. Channels whose bone is not in skeleton, or every channel when skeleton is nil, are
// pinned to the Y of their first key. Horizontal translation, rotation and scale are untouched.
// The receiver is not modified.
//
// Parameters:
//   - skeleton: the skeleton supplying rest translations, may be nil
//
// Returns:
//   - *AnimationClip: the filtered copy, or nil for a nil receiver
func (c *AnimationClip) WithoutVerticalMotion(skeleton *Skeleton) *AnimationClip {
	out := c.Clone()
	if out == nil {
		return nil
	}

	for i := range out.Channels {
		ch := &out.Channels[i]
		if len(ch.PositionKeys) == 0 {
			continue
		}
		y := ch.PositionKeys[0].Value[1]
		if rest, ok := skeleton.restTranslation(ch); ok {
			y = rest[1]
		}
		for j := range ch.PositionKeys {
			ch.PositionKeys[j].Value[1] = y
		}
	}
	return out
}

// restTranslation finds the rest translation of a channel's bone, by index and then by name.
func (s *Skeleton) restTranslation(ch *AnimationChannel) ([3]float32, bool) {
	if s == nil {
		return [3]float32{}, false
	}
	idx := ch.BoneIndex
	if idx < 0 || int(idx) >= len(s.Bones) || (ch.BoneName != "" && s.Bones[idx].Name != ch.BoneName) {
		var ok bool
		if idx, ok = s.FindBone(ch.BoneName); !ok {
			return [3]float32{}, false
		}
	}
	return s.Bones[idx].LocalTransform.Translation, true
}

// Retarget returns a copy of the clip bound to another skeleton by bone name.
// Names are compared exactly first, then without a rig namespace ("mixamorig:Hips" matches "Hips").
// Channels whose bone does not exist in the target skeleton are dropped.
//
// Parameters:
//   - skeleton: the skeleton the clip will be played on
//
// Returns:
//   - *AnimationClip: the retargeted copy
//   - int: the number of channels that found a bone
func (c *AnimationClip) Retarget(skeleton *Skeleton) (*AnimationClip, int) {
	out := c.Clone()
	if out == nil || skeleton == nil {
		return out, 0
	}

	bare := make(map[string]int32, len(skeleton.Bones))
	for i, b := range skeleton.Bones {
		bare[stripBoneNamespace(b.Name)] = int32(i)
	}

	kept := out.Channels[:0]
	for _, ch := range out.Channels {
		idx, ok := skeleton.FindBone(ch.BoneName)
		if !ok {
			idx, ok = bare[stripBoneNamespace(ch.BoneName)]
		}
		if !ok {
			continue
		}
		ch.BoneIndex = idx
		kept = append(kept, ch)
	}
	out.Channels = kept
	return out, len(kept)
}

func stripBoneNamespace(name string) string {
	if i := strings.LastIndexAny(name, ":|"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// HasVerticalMotion reports whether any position channel of the clip changes its Y value over time.
func (c *AnimationClip) HasVerticalMotion() bool {
	if c == nil {
		return false
	}
	for _, ch := range c.Channels {
		for _, k := range ch.PositionKeys {
			if k.Value[1] != ch.PositionKeys[0].Value[1] {
				return true
			}
		}
	}
	return false
}

// RestPose returns the local rest transform of every bone, indexed like Bones.
func (s *Skeleton) RestPose() []Transform {
	if s == nil {
		return nil
	}
	pose := make([]Transform, len(s.Bones))
	for i, b := range s.Bones {
		pose[i] = b.LocalTransform
	}
	return pose
}

// FindBone looks up a bone by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int32: the bone index, or -1 if absent
//   - bool: true if the bone exists
func (s *Skeleton) FindBone(name string) (int32, bool) {
	if s == nil {
		return -1, false
	}
	idx, ok := s.BoneNameToIndex[name]
	if !ok {
		return -1, false
	}
	return idx, true
}
