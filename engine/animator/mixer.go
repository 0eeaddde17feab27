package animator

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// mixer is the implementation of the Mixer interface.
type mixer struct {
	skeleton *model.Skeleton
	rest     []model.Transform

	actions []*action
	byName  map[string]*action

	accum []boneAccumulator
	pose  []model.Transform
}

// Mixer owns the actions of one model and blends them into a single pose.
// It is not safe for concurrent use; it is driven from the frame thread.
type Mixer interface {
	// ClipAction returns the action for a clip, creating it on first use.
	// Actions are keyed by clip name, so a clip derived from another with the same name shares its action.
	//
	// Parameters:
	//   - clip: the clip to play
	//
	// Returns:
	//   - Action: the action for the clip
	ClipAction(clip *model.AnimationClip) Action

	// Update advances every action by dt seconds.
	//
	// Parameters:
	//   - dt: frame delta time in seconds
	Update(dt float32)

	// Pose samples every contributing action into per-bone local transforms.
	// Bones no action animates keep their rest transform. The returned slice is reused by the next call.
	//
	// Returns:
	//   - []model.Transform: one local transform per skeleton bone
	Pose() []model.Transform

	// Skeleton returns the skeleton the mixer poses.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton, nil for a model without bones
	Skeleton() *model.Skeleton

	// StopAll stops every action.
	StopAll()

	// Release stops and forgets every action.
	Release()
}

var _ Mixer = &mixer{}

// NewMixer creates a Mixer for a skeleton.
//
// Parameters:
//   - skeleton: the bone hierarchy to pose, may be nil
//
// Returns:
//   - Mixer: the newly created Mixer instance
func NewMixer(skeleton *model.Skeleton) Mixer {
	m := &mixer{
		skeleton: skeleton,
		byName:   make(map[string]*action),
	}
	if skeleton != nil {
		m.rest = skeleton.RestPose()
		m.accum = make([]boneAccumulator, len(skeleton.Bones))
		m.pose = make([]model.Transform, len(skeleton.Bones))
	}
	return m
}

func (m *mixer) ClipAction(clip *model.AnimationClip) Action {
	if a, ok := m.byName[clip.Name]; ok {
		a.clip = clip
		return a
	}
	a := newAction(clip)
	m.actions = append(m.actions, a)
	m.byName[clip.Name] = a
	return a
}

func (m *mixer) Update(dt float32) {
	for _, a := range m.actions {
		a.update(dt)
	}
}

func (m *mixer) Pose() []model.Transform {
	if m.skeleton == nil {
		return nil
	}

	for i := range m.accum {
		m.accum[i] = boneAccumulator{}
	}

	for _, a := range m.actions {
		if !a.contributes() {
			continue
		}
		for _, ch := range a.clip.Channels {
			if ch.BoneIndex < 0 || int(ch.BoneIndex) >= len(m.accum) {
				continue
			}
			acc := &m.accum[ch.BoneIndex]
			if v, ok := sampleVector(ch.PositionKeys, a.time); ok {
				acc.addTranslation(v, a.weight)
			}
			if q, ok := sampleQuat(ch.RotationKeys, a.time); ok {
				acc.addRotation(q, a.weight)
			}
			if v, ok := sampleVector(ch.ScaleKeys, a.time); ok {
				acc.addScale(v, a.weight)
			}
		}
	}

	for i := range m.pose {
		m.pose[i] = m.accum[i].resolve(m.rest[i])
	}
	return m.pose
}

func (m *mixer) Skeleton() *model.Skeleton {
	return m.skeleton
}

func (m *mixer) StopAll() {
	for _, a := range m.actions {
		a.Stop()
	}
}

func (m *mixer) Release() {
	m.StopAll()
	m.actions = nil
	m.byName = make(map[string]*action)
}
