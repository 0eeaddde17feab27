package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/animator"
	"github.com/Carmen-Shannon/oxy-vr/engine/audio"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vr/engine/loader"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"github.com/Carmen-Shannon/oxy-vr/engine/movement"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/xr"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownControl is returned when selecting a control ID the layout does not define.
var ErrUnknownControl = errors.New("unknown control")

// Scene composes the showroom: placed models with their animation controllers,
// the control hit-targets, the background playlist and the viewpoint.
type Scene interface {
	// Name returns the layout name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Active returns whether the engine updates and renders the scene.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive toggles whether the engine updates and renders the scene.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Immersive reports whether the viewpoint is the thumbstick rig (true) or the orbit camera (false).
	//
	// Returns:
	//   - bool: true in immersive mode
	Immersive() bool

	// Session returns the session request the scene was built for.
	//
	// Returns:
	//   - xr.SessionOptions: the session mode and composition layers
	Session() xr.SessionOptions

	// Camera returns the camera following the current viewpoint.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Renderer returns the presenter the engine draws the scene with, or nil when headless.
	//
	// Returns:
	//   - renderer.Renderer: the renderer or nil
	Renderer() renderer.Renderer

	// Background returns the clear color.
	//
	// Returns:
	//   - [3]float64: linear RGB
	Background() [3]float64

	// Orbit returns the desktop orbit controller.
	//
	// Returns:
	//   - camera.OrbitController: the controller
	Orbit() camera.OrbitController

	// Movement returns the thumbstick movement controller.
	//
	// Returns:
	//   - movement.Controller: the controller
	Movement() movement.Controller

	// Audio returns the playlist controller, or nil when the scene has no audio backend.
	//
	// Returns:
	//   - audio.Controller: the controller or nil
	Audio() audio.Controller

	// Object returns a placement by layout ID.
	//
	// Parameters:
	//   - id: the model ID
	//
	// Returns:
	//   - game_object.GameObject: the object
	//   - bool: false if the ID is unknown
	Object(id string) (game_object.GameObject, bool)

	// Objects returns every placement in layout order, loaded or not.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// Controls returns the controls currently selectable, in layout order.
	// A control requiring clips stays hidden until its target has one.
	//
	// Returns:
	//   - []Control: the visible controls
	Controls() []Control

	// Start requests every model and animation asset and starts the playlist.
	// Completions are applied during Update.
	Start()

	// Select casts a ray against the visible spatial controls and invokes the nearest hit.
	// Any selection also counts as a user interaction for audio.
	//
	// Parameters:
	//   - origin: the ray origin
	//   - dir: the ray direction
	//
	// Returns:
	//   - string: the ID of the control hit
	//   - bool: false if nothing was hit
	Select(origin, dir mgl32.Vec3) (string, bool)

	// SelectControl invokes a control by ID regardless of visibility.
	//
	// Parameters:
	//   - id: the control ID
	//
	// Returns:
	//   - error: ErrUnknownControl if the ID is not in the layout
	SelectControl(id string) error

	// HandleKey invokes every control bound to a key code.
	//
	// Parameters:
	//   - code: the window key code
	//
	// Returns:
	//   - bool: true if a control was bound to the key
	HandleKey(code uint32) bool

	// Interact reports a user gesture so blocked audio can start.
	Interact()

	// Update applies finished loads, advances the viewpoint and every animation, and refreshes the camera.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous update
	Update(dt float32)

	// Close stops audio and releases every animation controller.
	Close()
}

type scene struct {
	mu *sync.Mutex

	layout *Layout
	active bool

	session xr.SessionOptions
	started bool
	closed  bool

	queue     dispatch.Queue
	ownsQueue bool
	ldr       loader.Loader

	objects []game_object.GameObject
	byID    map[string]game_object.GameObject

	audioBackend audio.Backend
	music        audio.Controller

	axes movement.AxisSource
	rig  movement.Rig
	move movement.Controller

	orbit camera.OrbitController
	cam   camera.Camera
	r     renderer.Renderer
}

var _ Scene = &scene{}

// NewScene creates a Scene for a layout with the provided options.
// Every placement exists immediately but stays disabled until its model loads.
//
// Parameters:
//   - layout: the validated layout (must not be nil)
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(layout *Layout, options ...SceneBuilderOption) Scene {
	if layout == nil {
		panic("scene: NewScene requires a non-nil Layout")
	}

	s := &scene{
		mu:      &sync.Mutex{},
		layout:  layout,
		active:  true,
		session: xr.NewSessionOptions(xr.SessionInline),
		byID:    make(map[string]game_object.GameObject, len(layout.Models)),
	}
	for _, option := range options {
		option(s)
	}

	if s.queue == nil {
		s.queue = dispatch.NewQueue()
		s.ownsQueue = true
	}
	if s.ldr == nil {
		s.ldr = loader.NewLoader(loader.WithQueue(s.queue), loader.WithAssetRoot(layout.AssetRoot))
	}

	for _, p := range layout.Models {
		obj := game_object.NewGameObject(
			game_object.WithID(p.ID),
			game_object.WithPosition(mgl32.Vec3(p.Position)),
			game_object.WithRotation(p.RotationRadians()),
			game_object.WithScale(p.ScaleVec()),
			game_object.WithHeadFollow(p.HeadFollow),
		)
		s.objects = append(s.objects, obj)
		s.byID[p.ID] = obj
	}

	s.buildViewpoint()
	s.buildAudio()
	return s
}

func (s *scene) buildViewpoint() {
	mc := s.layout.Movement
	rigOpts := []movement.RigBuilderOption{movement.WithPosition(mgl32.Vec3(mc.Start))}
	if mc.EyeHeight > 0 {
		rigOpts = append(rigOpts, movement.WithEyeHeight(mc.EyeHeight))
	}
	s.rig = movement.NewRig(rigOpts...)

	moveOpts := []movement.ControllerBuilderOption{movement.WithRig(s.rig), movement.WithAxisSource(s.axes)}
	if mc.Speed > 0 {
		moveOpts = append(moveOpts, movement.WithSpeed(mc.Speed))
	}
	if mc.RotationSpeed > 0 {
		moveOpts = append(moveOpts, movement.WithRotationSpeed(mc.RotationSpeed))
	}
	s.move = movement.NewController(moveOpts...)

	oc := s.layout.Orbit
	orbitOpts := []camera.OrbitControllerOption{camera.WithTarget(mgl32.Vec3(oc.Target))}
	if oc.Radius > 0 {
		orbitOpts = append(orbitOpts, camera.WithRadius(oc.Radius))
	}
	s.orbit = camera.NewOrbitController(orbitOpts...)

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.session.Immersive() {
		s.cam.SetSource(s.rig)
	} else {
		s.cam.SetSource(s.orbit)
	}
}

func (s *scene) buildAudio() {
	ac := s.layout.Audio
	if s.audioBackend == nil || len(ac.Tracks) == 0 {
		return
	}

	tracks := make([]audio.Track, len(ac.Tracks))
	for i, t := range ac.Tracks {
		t.Path = s.resolve(t.Path)
		tracks[i] = t
	}

	opts := []audio.ControllerBuilderOption{
		audio.WithBackend(s.audioBackend),
		audio.WithQueue(s.queue),
		audio.WithTracks(tracks...),
		audio.WithRetryDelay(ac.Retry()),
	}
	if ac.Volume != nil {
		opts = append(opts, audio.WithVolume(*ac.Volume))
	}
	if ac.Loop != nil {
		opts = append(opts, audio.WithLoop(*ac.Loop))
	}
	s.music = audio.NewController(opts...)
	s.music.OnTrackChange("scene", func(_ context.Context, t audio.Track) {
		slog.Info("scene: now playing", "track", t.DisplayName)
	})
}

func (s *scene) resolve(path string) string {
	if s.layout.AssetRoot == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.layout.AssetRoot, filepath.FromSlash(path))
}

func (s *scene) Name() string {
	return s.layout.Name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Immersive() bool {
	return s.session.Immersive()
}

func (s *scene) Session() xr.SessionOptions {
	return xr.NewSessionOptions(s.session.Mode, s.session.Layers...)
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Background() [3]float64 {
	return s.layout.Background
}

func (s *scene) Orbit() camera.OrbitController {
	return s.orbit
}

func (s *scene) Movement() movement.Controller {
	return s.move
}

func (s *scene) Audio() audio.Controller {
	return s.music
}

func (s *scene) Object(id string) (game_object.GameObject, bool) {
	obj, ok := s.byID[id]
	return obj, ok
}

func (s *scene) Objects() []game_object.GameObject {
	return append([]game_object.GameObject(nil), s.objects...)
}

func (s *scene) Controls() []Control {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Control, 0, len(s.layout.Controls))
	for _, c := range s.layout.Controls {
		if s.visible(c) {
			out = append(out, c)
		}
	}
	return out
}

// visible reports whether a control can currently be selected. Caller must hold the mutex.
func (s *scene) visible(c Control) bool {
	if !c.RequiresClips {
		return true
	}
	obj, ok := s.byID[c.Target]
	if !ok {
		return false
	}
	anim := obj.Animator()
	return anim != nil && anim.Count() > 0
}

// --- Loading ---

func (s *scene) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.closed {
		return
	}
	s.started = true
	slog.Info("scene: starting", "scene", s.layout.Name, "session", s.session.Mode, "layers", s.session.Layers)

	for i, p := range s.layout.Models {
		s.load(p, s.objects[i])
	}

	if s.music != nil {
		if err := s.music.Start(); err != nil {
			slog.Warn("scene: audio not started", "error", err)
		}
	}
}

// load requests one placement's model, then its external animation asset.
// Callbacks run while Update drains the queue, with the scene mutex held.
func (s *scene) load(p ModelPlacement, obj game_object.GameObject) {
	s.ldr.LoadAsync(p.Path, func(m model.Model, err error) {
		if s.closed {
			return
		}
		if err != nil {
			slog.Error("scene: failed to load model", "id", p.ID, "path", p.Path, "error", err)
			return
		}

		opts := []animator.ControllerBuilderOption{
			animator.WithModel(m),
			animator.WithAutoPlay(p.AutoPlay),
			animator.WithStripVerticalMotion(p.StripVertical),
		}
		if p.TimeScale > 0 {
			opts = append(opts, animator.WithTimeScale(p.TimeScale))
		}
		anim := animator.NewController(opts...)

		obj.SetModel(m)
		obj.SetAnimator(anim)
		obj.SetEnabled(true)
		slog.Info("scene: model ready", "id", p.ID, "clips", anim.Count(), "skinned", m.Skinned())

		if p.Animation == "" {
			return
		}
		s.ldr.LoadAnimationsAsync(p.Animation, func(clips []*model.AnimationClip, err error) {
			if s.closed {
				return
			}
			if err != nil {
				slog.Error("scene: failed to load animation", "id", p.ID, "path", p.Animation, "error", err)
				return
			}
			added := anim.AddClips(clips...)
			slog.Info("scene: animations merged", "id", p.ID, "added", added, "clips", anim.Count())
		})
	})
}

// --- Controls ---

func (s *scene) Select(origin, dir mgl32.Vec3) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interact()
	if dir.Len() == 0 {
		return "", false
	}
	dir = dir.Normalize()

	best := float32(math.MaxFloat32)
	var hit *Control
	for i := range s.layout.Controls {
		c := &s.layout.Controls[i]
		if !c.Spatial() || !s.visible(*c) {
			continue
		}
		t, ok := common.RaySphere(origin, dir, mgl32.Vec3(c.Position), c.Radius)
		if ok && t < best {
			best = t
			hit = c
		}
	}
	if hit == nil {
		return "", false
	}

	s.invoke(*hit)
	return hit.ID, true
}

func (s *scene) SelectControl(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interact()
	for _, c := range s.layout.Controls {
		if c.ID == id {
			s.invoke(c)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownControl, id)
}

func (s *scene) HandleKey(code uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interact()
	handled := false
	for _, c := range s.layout.Controls {
		if k, ok := c.KeyCode(); ok && k == code {
			s.invoke(c)
			handled = true
		}
	}
	return handled
}

func (s *scene) Interact() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interact()
}

// interact forwards a user gesture to audio. Caller must hold the mutex.
func (s *scene) interact() {
	if s.music != nil && !s.closed {
		s.music.Interact()
	}
}

// invoke runs a control's action. Targets still loading are a silent no-op.
// Caller must hold the mutex.
func (s *scene) invoke(c Control) {
	if s.closed {
		return
	}

	if c.Action == ActionNextTrack {
		if s.music == nil {
			slog.Debug("scene: no audio for control", "control", c.ID)
			return
		}
		if _, err := s.music.NextTrack(); err != nil {
			slog.Warn("scene: next track failed", "control", c.ID, "error", err)
		}
		return
	}

	obj, ok := s.byID[c.Target]
	if !ok {
		return
	}
	anim := obj.Animator()
	if anim == nil {
		slog.Debug("scene: control target not loaded", "control", c.ID, "target", c.Target)
		return
	}

	var played bool
	switch c.Action {
	case ActionNextAnimation:
		played = anim.Next()
	case ActionPreviousAnimation:
		played = anim.Previous()
	case ActionToggleAnimation:
		played = anim.Toggle()
	}
	current, _ := anim.Current()
	slog.Debug("scene: control invoked", "control", c.ID, "target", c.Target, "ok", played, "clip", current)
}

// --- Frame ---

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.queue.Drain()

	if s.session.Immersive() {
		s.move.Update()
	}
	s.cam.Update()

	eye := s.cam.Eye()
	for _, obj := range s.objects {
		if obj.Enabled() {
			obj.Update(dt, eye)
		}
	}
}

func (s *scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.music != nil {
		s.music.RemoveTrackObserver("scene")
		s.music.Close()
	}
	for _, obj := range s.objects {
		if anim := obj.Animator(); anim != nil {
			anim.Release()
		}
		obj.SetEnabled(false)
	}
	if s.ownsQueue {
		s.queue.Close()
	}
}
