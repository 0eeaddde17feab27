package animator

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Keyframe Sampling ---

// sampleVector linearly interpolates a vector track at time t.
// Times before the first key hold the first value, times after the last hold the last value.
func sampleVector(keys []model.VectorKeyframe, t float32) (mgl32.Vec3, bool) {
	switch len(keys) {
	case 0:
		return mgl32.Vec3{}, false
	case 1:
		return mgl32.Vec3(keys[0].Value), true
	}

	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if i == 0 {
		return mgl32.Vec3(keys[0].Value), true
	}
	if i == len(keys) {
		return mgl32.Vec3(keys[len(keys)-1].Value), true
	}

	k0, k1 := keys[i-1], keys[i]
	f := segmentFactor(k0.Time, k1.Time, t)
	a, b := mgl32.Vec3(k0.Value), mgl32.Vec3(k1.Value)
	return a.Add(b.Sub(a).Mul(f)), true
}

// sampleQuat spherically interpolates a rotation track at time t along the shortest arc.
func sampleQuat(keys []model.QuaternionKeyframe, t float32) (mgl32.Quat, bool) {
	switch len(keys) {
	case 0:
		return mgl32.QuatIdent(), false
	case 1:
		return common.QuatFromArray(keys[0].Value), true
	}

	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if i == 0 {
		return common.QuatFromArray(keys[0].Value), true
	}
	if i == len(keys) {
		return common.QuatFromArray(keys[len(keys)-1].Value), true
	}

	k0, k1 := keys[i-1], keys[i]
	f := segmentFactor(k0.Time, k1.Time, t)
	return slerpShortest(common.QuatFromArray(k0.Value), common.QuatFromArray(k1.Value), f), true
}

func segmentFactor(t0, t1, t float32) float32 {
	span := t1 - t0
	if span <= 0 {
		return 0
	}
	return clamp01((t - t0) / span)
}

// slerpShortest wraps mgl32.QuatSlerp, which does not pick the shorter of the two arcs itself.
func slerpShortest(a, b mgl32.Quat, f float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, f)
}

// --- Pose Blending ---

// boneAccumulator gathers the weighted contributions of every action for one bone.
type boneAccumulator struct {
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3

	tWeight, rWeight, sWeight float32
}

func (b *boneAccumulator) addTranslation(v mgl32.Vec3, w float32) {
	b.translation = b.translation.Add(v.Mul(w))
	b.tWeight += w
}

func (b *boneAccumulator) addScale(v mgl32.Vec3, w float32) {
	b.scale = b.scale.Add(v.Mul(w))
	b.sWeight += w
}

// addRotation folds q into the running rotation so the result matches a weighted average:
// each new sample is slerped in by its share of the weight accumulated so far.
func (b *boneAccumulator) addRotation(q mgl32.Quat, w float32) {
	if b.rWeight == 0 {
		b.rotation = q
		b.rWeight = w
		return
	}
	b.rWeight += w
	b.rotation = slerpShortest(b.rotation, q, w/b.rWeight)
}

// resolve mixes the accumulated values with the rest transform.
// Weights below 1 leave the remainder to the rest pose, weights above 1 are normalized.
func (b *boneAccumulator) resolve(rest model.Transform) model.Transform {
	out := rest

	if b.tWeight > 0 {
		t := b.translation.Mul(1 / b.tWeight)
		if b.tWeight < 1 {
			r := mgl32.Vec3(rest.Translation)
			t = r.Add(t.Sub(r).Mul(b.tWeight))
		}
		out.Translation = t
	}

	if b.rWeight > 0 {
		q := b.rotation
		if b.rWeight < 1 {
			q = slerpShortest(common.QuatFromArray(rest.Rotation), q, b.rWeight)
		}
		out.Rotation = common.QuatToArray(q.Normalize())
	}

	if b.sWeight > 0 {
		s := b.scale.Mul(1 / b.sWeight)
		if b.sWeight < 1 {
			r := mgl32.Vec3(rest.Scale)
			s = r.Add(s.Sub(r).Mul(b.sWeight))
		}
		out.Scale = s
	}

	return out
}

// --- Skeleton Space ---

// WorldMatrices composes local bone transforms into skeleton space matrices.
// Bones are expected in parent-first order, which the loader guarantees.
//
// Parameters:
//   - skeleton: the bone hierarchy
//   - pose: one local transform per bone, as returned by Mixer.Pose
//
// Returns:
//   - []mgl32.Mat4: one skeleton space matrix per bone
func WorldMatrices(skeleton *model.Skeleton, pose []model.Transform) []mgl32.Mat4 {
	if skeleton == nil {
		return nil
	}

	world := make([]mgl32.Mat4, len(skeleton.Bones))
	for i, bone := range skeleton.Bones {
		local := mgl32.Ident4()
		if i < len(pose) {
			local = LocalMatrix(pose[i])
		}
		p := bone.ParentIndex
		if p >= 0 && int(p) < i {
			world[i] = world[p].Mul4(local)
		} else {
			world[i] = local
		}
	}
	return world
}

// SkinningMatrices multiplies skeleton space matrices by each bone's inverse bind matrix,
// producing the per-bone matrices a vertex skinning pass consumes.
//
// Parameters:
//   - skeleton: the bone hierarchy
//   - world: the output of WorldMatrices
//
// Returns:
//   - []mgl32.Mat4: one skinning matrix per bone
func SkinningMatrices(skeleton *model.Skeleton, world []mgl32.Mat4) []mgl32.Mat4 {
	if skeleton == nil {
		return nil
	}

	out := make([]mgl32.Mat4, len(world))
	for i := range world {
		out[i] = world[i].Mul4(mgl32.Mat4(skeleton.Bones[i].InverseBindMatrix))
	}
	return out
}

// LocalMatrix converts a decomposed transform to a T * R * S matrix.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - mgl32.Mat4: the matrix
func LocalMatrix(t model.Transform) mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(common.QuatFromArray(t.Rotation).Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}
