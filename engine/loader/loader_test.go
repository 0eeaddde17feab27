package loader

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureBinary lays out the buffer used by fixtureDocument:
//
//	  0: times        SCALAR float  x2
//	  8: translations VEC3   float  x2
//	 32: rotations    VEC4   short  x2 (normalized)
//	 48: positions    VEC3   float  x3 (no min/max)
//	 84: inverse bind MAT4   float  x2
func fixtureBinary() []byte {
	var buf []byte
	f32 := func(vs ...float32) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	i16 := func(vs ...int16) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		}
	}

	f32(0, 1)
	f32(0, 1, 0, 0, 2, 0)
	i16(0, 0, 0, 32767, 0, 32767, 0, 0)
	f32(-1, 0, 0, 1, 2, 0, 0, 0, -0.5)
	for range 2 {
		f32(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)
	}
	return buf
}

func fixtureDocument(bufferURI string, animName string) map[string]any {
	buffer := map[string]any{"byteLength": 212}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	animation := map[string]any{
		"channels": []any{
			map[string]any{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}},
			map[string]any{"sampler": 1, "target": map[string]any{"node": 2, "path": "rotation"}},
			map[string]any{"sampler": 0, "target": map[string]any{"node": 2, "path": "weights"}},
		},
		"samplers": []any{
			map[string]any{"input": 0, "output": 1},
			map[string]any{"input": 0, "output": 2, "interpolation": "LINEAR"},
		},
	}
	if animName != "" {
		animation["name"] = animName
	}

	return map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "Armature", "children": []int{1, 3}},
			map[string]any{"name": "Hips", "children": []int{2}, "translation": []float32{0, 1, 0}},
			map[string]any{"name": "Head", "translation": []float32{0, 0.6, 0}},
			map[string]any{"name": "Body", "mesh": 0, "skin": 0},
		},
		"meshes": []any{
			map[string]any{"name": "Body", "primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 3}}}},
		},
		"skins": []any{
			map[string]any{"joints": []int{2, 1}, "inverseBindMatrices": 4},
		},
		"animations": []any{animation},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
			map[string]any{"bufferView": 2, "componentType": 5122, "normalized": true, "count": 2, "type": "VEC4"},
			map[string]any{"bufferView": 3, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 4, "componentType": 5126, "count": 2, "type": "MAT4"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 8, "byteLength": 24},
			map[string]any{"buffer": 0, "byteOffset": 32, "byteLength": 16},
			map[string]any{"buffer": 0, "byteOffset": 48, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 84, "byteLength": 128},
		},
		"buffers": []any{buffer},
	}
}

func buildGLB(t *testing.T, animName string) []byte {
	t.Helper()

	js, err := json.Marshal(fixtureDocument("", animName))
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := fixtureBinary()
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := 12 + 8 + len(js) + 8 + len(bin)
	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, gltfGLBMagic)
	out = binary.LittleEndian.AppendUint32(out, gltfGLBVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, gltfGLBChunkJSON)
	out = append(out, js...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
	out = binary.LittleEndian.AppendUint32(out, gltfGLBChunkBIN)
	out = append(out, bin...)
	return out
}

func assertFixtureModel(t *testing.T, m model.Model) {
	t.Helper()

	require.True(t, m.Skinned())
	sk := m.Skeleton()
	require.Len(t, sk.Bones, 2)
	assert.Equal(t, "Hips", sk.Bones[0].Name, "parents sort before children")
	assert.Equal(t, int32(-1), sk.Bones[0].ParentIndex)
	assert.Equal(t, "Head", sk.Bones[1].Name)
	assert.Equal(t, int32(0), sk.Bones[1].ParentIndex)
	assert.Equal(t, []int32{0}, sk.RootBoneIndices)
	assert.Equal(t, float32(0.6), sk.Bones[1].LocalTransform.Translation[1])

	require.Equal(t, 1, m.AnimationCount())
	clip := m.Animations()[0]
	assert.Equal(t, float32(1), clip.Duration)
	require.Len(t, clip.Channels, 2, "weights channel is skipped")

	hips := clip.Channels[0]
	assert.Equal(t, int32(0), hips.BoneIndex)
	assert.Equal(t, "Hips", hips.BoneName)
	require.Len(t, hips.PositionKeys, 2)
	assert.Equal(t, [3]float32{0, 2, 0}, hips.PositionKeys[1].Value)

	head := clip.Channels[1]
	assert.Equal(t, int32(1), head.BoneIndex)
	require.Len(t, head.RotationKeys, 2)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, head.RotationKeys[0].Value)
	assert.Equal(t, [4]float32{0, 1, 0, 0}, head.RotationKeys[1].Value)

	require.Len(t, m.Meshes(), 1)
	mesh := m.Meshes()[0]
	assert.Equal(t, 3, mesh.VertexCount)
	assert.Equal(t, [3]float32{-1, 0, -0.5}, mesh.BoundingMin)
	assert.Equal(t, [3]float32{1, 2, 0}, mesh.BoundingMax)
	assert.InDelta(t, math.Sqrt(5.25), m.BoundingRadius(), 1e-5)
}

func TestLoadBytesGLB(t *testing.T) {
	l := NewLoader()

	m, err := l.LoadBytes("avatar", buildGLB(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "avatar", m.Name())
	assertFixtureModel(t, m)
	assert.Equal(t, []string{"clip_0"}, m.AnimationNames())
	assert.Same(t, m, l.Get("avatar"))
}

func TestLoadBytesGLTFDataURI(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(fixtureBinary())
	js, err := json.Marshal(fixtureDocument(uri, "Idle"))
	require.NoError(t, err)

	m, err := NewLoader().LoadBytes("embedded", js)
	require.NoError(t, err)
	assertFixtureModel(t, m)
	assert.Equal(t, []string{"Idle"}, m.AnimationNames())
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SamiAvatar.glb"), buildGLB(t, "Wave"), 0o644))

	l := NewLoader(WithAssetRoot(dir))
	m, err := l.Load("SamiAvatar.glb")
	require.NoError(t, err)
	assertFixtureModel(t, m)
	assert.Equal(t, filepath.Join(dir, "SamiAvatar.glb"), m.SourcePath())

	again, err := l.Load("SamiAvatar.glb")
	require.NoError(t, err)
	assert.Same(t, m, again, "second load is served from the cache")
	assert.Len(t, l.Models(), 1)
}

func TestLoadAnimationsNamesSingleClipAfterFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Typing.glb"), buildGLB(t, ""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Named.glb"), buildGLB(t, "Dance"), 0o644))

	l := NewLoader(WithAssetRoot(dir))

	clips, err := l.LoadAnimations("Typing.glb")
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "Typing", clips[0].Name)
	assert.Equal(t, "Hips", clips[0].Channels[0].BoneName)

	clips, err = l.LoadAnimations("Named.glb")
	require.NoError(t, err)
	assert.Equal(t, "Dance", clips[0].Name)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	l := NewLoader()

	_, err := l.Load("assets/Typing.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadAnimations("assets/Standing Idle.FBX")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(WithAssetRoot(t.TempDir())).Load("missing.glb")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseMalformedGLB(t *testing.T) {
	glb := buildGLB(t, "")

	cases := map[string][]byte{
		"too short":   glb[:8],
		"truncated":   glb[:len(glb)-16],
		"bad version": append(append([]byte{}, glb[:4]...), append([]byte{3, 0, 0, 0}, glb[8:]...)...),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes(name, data)
			assert.Error(t, err)
		})
	}
}

func TestReadFloatsBoundsChecked(t *testing.T) {
	doc := fixtureDocument("", "")
	views := doc["bufferViews"].([]any)
	views[3] = map[string]any{"buffer": 0, "byteOffset": 200, "byteLength": 36}

	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(fixtureBinary())
	doc["buffers"] = []any{map[string]any{"byteLength": 212, "uri": uri}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = NewLoader().LoadBytes("broken", js)
	assert.ErrorIs(t, err, errAccessorOutOfRange)
}

func TestLoadAsyncPostsToQueue(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AlfredAvatar.glb"), buildGLB(t, "Idle"), 0o644))

	q := dispatch.NewQueue()
	defer q.Close()
	l := NewLoader(WithQueue(q), WithAssetRoot(dir))

	var got atomic.Value
	l.LoadAsync("AlfredAvatar.glb", func(m model.Model, err error) {
		assert.NoError(t, err)
		got.Store(m)
	})

	require.Eventually(t, func() bool {
		q.Drain()
		return got.Load() != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Idle"}, got.Load().(model.Model).AnimationNames())

	var failed atomic.Bool
	l.LoadAsync("Typing.fbx", func(m model.Model, err error) {
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		failed.Store(true)
	})
	require.Eventually(t, func() bool {
		q.Drain()
		return failed.Load()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoadAsyncWithoutQueueIsSynchronous(t *testing.T) {
	pre := model.NewModel(model.WithName("cached"))
	l := NewLoader(WithModel("cached.glb", pre))

	var got model.Model
	l.LoadAsync("cached.glb", func(m model.Model, err error) {
		require.NoError(t, err)
		got = m
	})
	assert.Same(t, pre, got)
}
