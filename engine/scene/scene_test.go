package scene

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/audio"
	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/loader"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/Carmen-Shannon/oxy-vr/engine/movement"
	"github.com/Carmen-Shannon/oxy-vr/engine/xr"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLayoutYAML = `
name: test
background: [0.1, 0.2, 0.3]
models:
  - id: robot
    path: robot.glb
    autoplay: true
  - id: car
    path: car.glb
    position: [2, 0, -4]
  - id: alfred
    path: alfred.glb
    animation: idle.glb
    head_follow: true
    autoplay: true
  - id: ghost
    path: missing.glb
controls:
  - id: robot-next
    position: [0, 0, -2]
    radius: 0.1
    action: next_animation
    target: robot
    key: N
  - id: alfred-next
    position: [0.5, 0, -2]
    radius: 0.1
    action: next_animation
    target: alfred
    requires_clips: true
  - id: robot-previous
    action: previous_animation
    target: robot
    key: P
  - id: robot-toggle
    action: toggle_animation
    target: robot
    key: SPACE
  - id: ghost-next
    position: [1, 0, -2]
    radius: 0.1
    action: next_animation
    target: ghost
  - id: music
    position: [-0.5, 0, -2]
    radius: 0.1
    action: next_track
    key: M
audio:
  tracks:
    - {id: one, name: One, path: one.mp3}
    - {id: two, name: Two, path: two.mp3}
movement:
  start: [1, 0, 3]
  eye_height: 1.5
orbit:
  target: [0, 1, -5]
  radius: 4
`

func identityArray() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func testSkeleton() *model.Skeleton {
	hips := model.IdentityTransform()
	hips.Translation = [3]float32{0, 1, 0}
	head := model.IdentityTransform()
	head.Translation = [3]float32{0, 0.5, 0}

	return &model.Skeleton{
		Bones: []model.Bone{
			{Name: "Hips", ParentIndex: -1, LocalTransform: hips, InverseBindMatrix: identityArray()},
			{Name: "Head", ParentIndex: 0, LocalTransform: head, InverseBindMatrix: identityArray()},
		},
		RootBoneIndices: []int32{0},
		BoneNameToIndex: map[string]int32{"Hips": 0, "Head": 1},
	}
}

func testClip(name string) *model.AnimationClip {
	return &model.AnimationClip{
		Name:     name,
		Duration: 1,
		Channels: []model.AnimationChannel{{
			BoneIndex: 0,
			BoneName:  "Hips",
			PositionKeys: []model.VectorKeyframe{
				{Time: 0, Value: [3]float32{0, 1, 0}},
				{Time: 1, Value: [3]float32{0, 1, 1}},
			},
		}},
	}
}

type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	closed  bool
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) SetVolume(float64) {}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.playing = false
	return nil
}

type fakeBackend struct {
	mu     sync.Mutex
	opened []string
}

func (b *fakeBackend) Open(path string, _ bool) (audio.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, path)
	return &fakePlayer{}, nil
}

func (b *fakeBackend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.opened...)
}

type fakeAxes struct {
	left, right []float32
}

var _ movement.AxisSource = &fakeAxes{}

func (a *fakeAxes) Axes(hand common.Hand) ([]float32, bool) {
	if hand == common.HandLeft {
		return a.left, a.left != nil
	}
	return a.right, a.right != nil
}

type fixture struct {
	scene   Scene
	queue   dispatch.Queue
	backend *fakeBackend
}

func newFixture(t *testing.T, options ...SceneBuilderOption) *fixture {
	t.Helper()

	layout, err := ParseLayout([]byte(testLayoutYAML))
	require.NoError(t, err)

	q := dispatch.NewQueue()
	t.Cleanup(q.Close)

	robot := model.NewModel(
		model.WithName("robot"),
		model.WithSkinned(true),
		model.WithSkeleton(testSkeleton()),
		model.WithAnimations([]*model.AnimationClip{testClip("wave"), testClip("dance"), testClip("bow")}),
	)
	car := model.NewModel(model.WithName("car"))
	alfred := model.NewModel(model.WithName("alfred"), model.WithSkinned(true), model.WithSkeleton(testSkeleton()))

	ldr := loader.NewLoader(
		loader.WithQueue(q),
		loader.WithModel("robot.glb", robot),
		loader.WithModel("car.glb", car),
		loader.WithModel("alfred.glb", alfred),
		loader.WithAnimations("idle.glb", []*model.AnimationClip{testClip("idle")}),
	)

	b := &fakeBackend{}
	base := []SceneBuilderOption{WithQueue(q), WithLoader(ldr), WithAudioBackend(b)}
	s := NewScene(layout, append(base, options...)...)
	t.Cleanup(s.Close)
	return &fixture{scene: s, queue: q, backend: b}
}

// loaded starts the scene and ticks until the loadable placements are ready.
func (f *fixture) loaded(t *testing.T) {
	t.Helper()
	f.scene.Start()
	require.Eventually(t, func() bool {
		f.scene.Update(0.016)
		alfred, _ := f.scene.Object("alfred")
		anim := alfred.Animator()
		robot, _ := f.scene.Object("robot")
		car, _ := f.scene.Object("car")
		return robot.Enabled() && car.Enabled() && anim != nil && anim.Count() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func currentClip(t *testing.T, s Scene, id string) string {
	t.Helper()
	obj, ok := s.Object(id)
	require.True(t, ok)
	require.NotNil(t, obj.Animator())
	name, _ := obj.Animator().Current()
	return name
}

func controlIDs(cs []Control) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNewScene_ObjectsStartDisabled(t *testing.T) {
	f := newFixture(t)

	objs := f.scene.Objects()
	require.Len(t, objs, 4)
	for _, obj := range objs {
		assert.False(t, obj.Enabled(), obj.ID())
		assert.Nil(t, obj.Model(), obj.ID())
	}

	car, ok := f.scene.Object("car")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{2, 0, -4}, car.Position())

	_, ok = f.scene.Object("nope")
	assert.False(t, ok)

	assert.Equal(t, "test", f.scene.Name())
	assert.Equal(t, [3]float64{0.1, 0.2, 0.3}, f.scene.Background())
	assert.True(t, f.scene.Active())
}

func TestScene_StartLoadsModelsAndMergesAnimations(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	assert.Equal(t, "wave", currentClip(t, f.scene, "robot"))
	assert.Equal(t, "idle", currentClip(t, f.scene, "alfred"))

	car, _ := f.scene.Object("car")
	assert.Zero(t, car.Animator().Count())

	ghost, _ := f.scene.Object("ghost")
	assert.False(t, ghost.Enabled())
	assert.Nil(t, ghost.Animator())
}

func TestScene_ControlsHiddenUntilClipsExist(t *testing.T) {
	f := newFixture(t)

	assert.NotContains(t, controlIDs(f.scene.Controls()), "alfred-next")
	assert.Contains(t, controlIDs(f.scene.Controls()), "robot-next")

	_, hit := f.scene.Select(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0, -1})
	assert.False(t, hit)

	f.loaded(t)
	assert.Contains(t, controlIDs(f.scene.Controls()), "alfred-next")

	id, hit := f.scene.Select(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0, -1})
	assert.True(t, hit)
	assert.Equal(t, "alfred-next", id)
}

func TestScene_SelectAdvancesAnimation(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	id, hit := f.scene.Select(mgl32.Vec3{}, mgl32.Vec3{0, 0, -3})
	require.True(t, hit)
	assert.Equal(t, "robot-next", id)
	assert.Equal(t, "dance", currentClip(t, f.scene, "robot"))

	_, hit = f.scene.Select(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.False(t, hit)
	_, hit = f.scene.Select(mgl32.Vec3{}, mgl32.Vec3{})
	assert.False(t, hit)
	assert.Equal(t, "dance", currentClip(t, f.scene, "robot"))
}

func TestScene_SelectPicksNearestControl(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	// from the side, the ray crosses music (-0.5) before robot-next (0)
	id, hit := f.scene.Select(mgl32.Vec3{-3, 0, -2}, mgl32.Vec3{1, 0, 0})
	require.True(t, hit)
	assert.Equal(t, "music", id)
}

func TestScene_SelectControl(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	require.NoError(t, f.scene.SelectControl("robot-previous"))
	assert.Equal(t, "bow", currentClip(t, f.scene, "robot"))

	err := f.scene.SelectControl("launch")
	assert.ErrorIs(t, err, ErrUnknownControl)
}

func TestScene_UnloadedTargetIsNoOp(t *testing.T) {
	f := newFixture(t)

	assert.NotPanics(t, func() {
		require.NoError(t, f.scene.SelectControl("robot-next"))
	})

	f.loaded(t)
	_, hit := f.scene.Select(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1})
	assert.True(t, hit, "failed placements keep their control")
	ghost, _ := f.scene.Object("ghost")
	assert.Nil(t, ghost.Animator())
}

func TestScene_HandleKey(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	assert.True(t, f.scene.HandleKey(common.KeyN))
	assert.Equal(t, "dance", currentClip(t, f.scene, "robot"))

	assert.True(t, f.scene.HandleKey(common.KeyP))
	assert.Equal(t, "wave", currentClip(t, f.scene, "robot"))

	robot, _ := f.scene.Object("robot")
	require.True(t, robot.Animator().IsPlaying())
	assert.True(t, f.scene.HandleKey(common.KeySpace))
	assert.False(t, robot.Animator().IsPlaying())

	assert.False(t, f.scene.HandleKey(common.KeyA))
}

func TestScene_NextTrack(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	music := f.scene.Audio()
	require.NotNil(t, music)
	require.Eventually(t, func() bool {
		f.scene.Update(0.016)
		return music.State().Playing
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, f.scene.HandleKey(common.KeyM))
	track, ok := music.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "two", track.ID)

	require.Eventually(t, func() bool {
		f.scene.Update(0.016)
		return music.State().Playing
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one.mp3", "two.mp3"}, f.backend.paths())

	require.NoError(t, f.scene.SelectControl("music"))
	track, _ = music.CurrentTrack()
	assert.Equal(t, "one", track.ID)
}

func TestScene_SilentWithoutBackend(t *testing.T) {
	layout, err := ParseLayout([]byte(testLayoutYAML))
	require.NoError(t, err)
	s := NewScene(layout, WithLoader(loader.NewLoader(loader.WithModel("robot.glb", model.NewModel()))))
	defer s.Close()

	assert.Nil(t, s.Audio())
	assert.NoError(t, s.SelectControl("music"))
	s.Start()
	s.Update(0.016)
	s.Interact()
}

func TestScene_DesktopCameraFollowsOrbit(t *testing.T) {
	f := newFixture(t)
	f.scene.Update(0.016)

	assert.False(t, f.scene.Immersive())
	cam := f.scene.Camera()
	orbit := f.scene.Orbit()
	assert.Equal(t, orbit.Eye(), cam.Eye())
	assert.InDelta(t, 4, orbit.Radius(), 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 1, -5}, orbit.Target())
}

func TestScene_ImmersiveCameraFollowsRig(t *testing.T) {
	axes := &fakeAxes{right: []float32{0, 0, 0, -1}}
	f := newFixture(t, WithImmersive(true), WithAxisSource(axes))

	assert.True(t, f.scene.Immersive())
	start := f.scene.Camera().Eye()
	assert.InDelta(t, 1, start.X(), 1e-6)
	assert.InDelta(t, 1.5, start.Y(), 1e-6)
	assert.InDelta(t, 3, start.Z(), 1e-6)

	for i := 0; i < 10; i++ {
		f.scene.Update(0.016)
	}
	eye := f.scene.Camera().Eye()
	assert.Less(t, eye.Z(), start.Z(), "pushing the stick forward moves toward -Z")
	assert.InDelta(t, start.Y(), eye.Y(), 1e-6)
}

func TestScene_SessionSelectsViewpoint(t *testing.T) {
	cases := []struct {
		name      string
		options   []SceneBuilderOption
		immersive bool
		layers    []string
	}{
		{"default is inline", nil, false, []string{}},
		{"immersive with layers", []SceneBuilderOption{WithSession(xr.NewSessionOptions(xr.SessionImmersiveVR, "projection"))}, true, []string{"projection"}},
		{"nil layers are filled in", []SceneBuilderOption{WithSession(xr.SessionOptions{Mode: xr.SessionInline})}, false, []string{}},
		{"shorthand", []SceneBuilderOption{WithImmersive(true)}, true, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.options...)

			session := f.scene.Session()
			assert.Equal(t, tc.immersive, f.scene.Immersive())
			assert.Equal(t, tc.immersive, session.Immersive())
			require.NotNil(t, session.Layers)
			assert.Equal(t, tc.layers, session.Layers)

			eye := f.scene.Camera().Eye()
			if tc.immersive {
				assert.InDelta(t, 1.5, eye.Y(), 1e-6, "rig at eye height")
			} else {
				assert.Equal(t, f.scene.Orbit().Eye(), eye)
			}
		})
	}
}

func TestScene_SessionIsCopied(t *testing.T) {
	f := newFixture(t, WithSession(xr.NewSessionOptions(xr.SessionImmersiveVR, "projection")))

	got := f.scene.Session()
	got.Layers[0] = "quad"
	assert.Equal(t, []string{"projection"}, f.scene.Session().Layers)
}

func TestScene_CloseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	f.scene.Close()
	f.scene.Close()

	for _, obj := range f.scene.Objects() {
		assert.False(t, obj.Enabled())
	}
	assert.NoError(t, f.scene.SelectControl("robot-next"))
	_, hit := f.scene.Select(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	assert.True(t, hit)
	assert.NotPanics(t, func() { f.scene.Update(0.016) })
}

func TestScene_OwnsQueueWhenUnset(t *testing.T) {
	layout := &Layout{Name: "empty"}
	s := NewScene(layout)
	s.Start()
	s.Update(0.016)
	s.Close()
	assert.Empty(t, s.Objects())
}

func TestNewScene_PanicsOnNilLayout(t *testing.T) {
	assert.Panics(t, func() { NewScene(nil) })
}

