package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu       sync.Mutex
	frames   int
	clear    [3]float64
	frameErr error
	width    int
	height   int
	released bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *fakeRenderer) SetClearColor(rgb [3]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear = rgb
}

func (r *fakeRenderer) Frame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frameErr != nil {
		return r.frameErr
	}
	r.frames++
	return nil
}

func (r *fakeRenderer) AdapterName() string { return "fake" }

func (r *fakeRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

// fakeScene overrides the Scene methods the engine calls.
type fakeScene struct {
	scene.Scene

	mu      sync.Mutex
	name    string
	active  bool
	r       renderer.Renderer
	cam     camera.Camera
	bg      [3]float64
	updates []float32
	starts  int
	closed  bool
}

func (s *fakeScene) Name() string                { return s.name }
func (s *fakeScene) Active() bool                { return s.active }
func (s *fakeScene) Renderer() renderer.Renderer { return s.r }
func (s *fakeScene) Camera() camera.Camera       { return s.cam }
func (s *fakeScene) Background() [3]float64      { return s.bg }

func (s *fakeScene) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, dt)
}

func (s *fakeScene) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
}

func (s *fakeScene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeScene) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *fakeScene) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestEngine_TickUpdatesActiveScenesOnly(t *testing.T) {
	active := &fakeScene{name: "a", active: true}
	idle := &fakeScene{name: "b"}
	var ticked float32
	e := NewEngine(WithScene(0, active), WithScene(1, idle)).(*engine)
	e.SetTickCallback(func(dt float32) { ticked = dt })

	e.tick(0.016)

	assert.Equal(t, []float32{0.016}, active.updates)
	assert.Empty(t, idle.updates)
	assert.InDelta(t, 0.016, ticked, 1e-9)
}

func TestEngine_RenderFramePresentsLowestActiveScene(t *testing.T) {
	back := &fakeRenderer{}
	front := &fakeRenderer{}
	e := NewEngine(
		WithScene(5, &fakeScene{name: "front", active: true, r: front, bg: [3]float64{1, 0, 0}}),
		WithScene(1, &fakeScene{name: "back", active: true, r: back, bg: [3]float64{0.1, 0.2, 0.3}}),
		WithScene(0, &fakeScene{name: "inactive", r: &fakeRenderer{}}),
	).(*engine)

	assert.True(t, e.renderFrame())
	assert.Equal(t, 1, back.frames)
	assert.Equal(t, [3]float64{0.1, 0.2, 0.3}, back.clear)
	assert.Zero(t, front.frames)
}

func TestEngine_RenderFrameSkipsWhileMinimized(t *testing.T) {
	r := &fakeRenderer{frameErr: renderer.ErrNoSurface}
	e := NewEngine(WithScene(0, &fakeScene{name: "s", active: true, r: r})).(*engine)
	assert.False(t, e.renderFrame())

	r.frameErr = errors.New("device lost")
	assert.False(t, e.renderFrame())
}

func TestEngine_RenderFrameWithoutRenderer(t *testing.T) {
	e := NewEngine(WithScene(0, &fakeScene{name: "s", active: true})).(*engine)
	assert.False(t, e.renderFrame())
}

func TestEngine_ResizeUpdatesRendererAndCamera(t *testing.T) {
	r := &fakeRenderer{}
	cam := camera.NewCamera()
	e := NewEngine(WithScene(0, &fakeScene{name: "s", r: r, cam: cam})).(*engine)

	e.resize(800, 400)
	assert.Equal(t, 800, r.width)
	assert.Equal(t, 400, r.height)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)

	e.resize(800, 0)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
}

func TestEngine_SceneRegistry(t *testing.T) {
	e := NewEngine()
	s := &fakeScene{name: "s"}
	e.AddScene(3, s)
	assert.Equal(t, scene.Scene(s), e.Scene(3))
	assert.Len(t, e.Scenes(), 1)

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
	assert.Empty(t, e.Scenes())
}

func TestEngine_TickRate(t *testing.T) {
	e := NewEngine(WithTickRate(90)).(*engine)
	assert.Equal(t, time.Duration(float64(time.Second)/90), e.engineTickRate)

	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.engineTickRate)

	e.SetRenderFrameLimit(120)
	assert.Equal(t, time.Duration(float64(time.Second)/120), e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestFrameInterval(t *testing.T) {
	cases := []struct {
		name           string
		rate, fallback float64
		want           time.Duration
	}{
		{"rate", 50, 60, 20 * time.Millisecond},
		{"fallback", 0, 50, 20 * time.Millisecond},
		{"negative uses fallback", -5, 100, 10 * time.Millisecond},
		{"no fallback", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, frameInterval(tc.rate, tc.fallback))
		})
	}
}

func TestEngine_Profiling(t *testing.T) {
	e := NewEngine().(*engine)
	assert.False(t, e.profilingEnabled)
	assert.Equal(t, time.Second, e.profileInterval)

	e = NewEngine(WithProfiling(250 * time.Millisecond)).(*engine)
	assert.True(t, e.profilingEnabled)
	assert.Equal(t, 250*time.Millisecond, e.profileInterval)

	e = NewEngine(WithProfiling(0)).(*engine)
	assert.False(t, e.profilingEnabled)
	assert.Equal(t, time.Second, e.profileInterval)
}

func TestEngine_HeadlessRunStopsOnQuit(t *testing.T) {
	s := &fakeScene{name: "s", active: true, r: &fakeRenderer{}}
	idle := &fakeScene{name: "idle"}
	e := NewEngine(WithScene(0, s), WithScene(1, idle), WithTickRate(500), WithStartScenes(true))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool { return s.updateCount() > 0 }, 2*time.Second, 5*time.Millisecond)
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.True(t, s.isClosed())
	assert.True(t, s.r.(*fakeRenderer).released)
	assert.Equal(t, 1, s.starts, "started once before the loops")
	assert.Equal(t, 1, idle.starts, "inactive scenes still load")
	assert.True(t, idle.isClosed())
}

func TestEngine_RunWithoutStartScenes(t *testing.T) {
	s := &fakeScene{name: "s"}
	e := NewEngine(WithScene(0, s))
	e.Quit()
	e.Run()

	assert.Zero(t, s.starts)
	assert.True(t, s.isClosed())
}
