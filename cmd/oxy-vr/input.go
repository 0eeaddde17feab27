package main

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
)

// desktopInput maps mouse and keyboard events onto the showroom.
// Window callbacks run on the main thread; the scene and camera lock internally.
type desktopInput struct {
	sc   scene.Scene
	cam  camera.Camera
	size func() (width, height int)

	dragging   bool
	lastX      int32
	lastY      int32
	desktopNav bool
}

func newDesktopInput(sc scene.Scene, cam camera.Camera, size func() (int, int)) *desktopInput {
	return &desktopInput{
		sc:         sc,
		cam:        cam,
		size:       size,
		desktopNav: !sc.Immersive(),
	}
}

func (in *desktopInput) leftDown(x, y int32) {
	if id, hit := in.selectAt(x, y); hit {
		slog.Debug("input: control selected", "control", id)
	}
}

// selectAt casts a ray through a cursor position and selects the control it hits.
func (in *desktopInput) selectAt(x, y int32) (string, bool) {
	w, h := in.size()
	origin, dir, ok := in.cam.ScreenRay(float32(x), float32(y), float32(w), float32(h))
	if !ok {
		in.sc.Interact()
		return "", false
	}
	return in.sc.Select(origin, dir)
}

func (in *desktopInput) middleDown(x, y int32) {
	in.sc.Interact()
	in.dragging = true
	in.lastX, in.lastY = x, y
}

func (in *desktopInput) middleUp(_, _ int32) {
	in.dragging = false
}

func (in *desktopInput) move(x, y int32) {
	if in.dragging && in.desktopNav {
		in.sc.Orbit().Drag(float64(x-in.lastX), float64(y-in.lastY))
	}
	in.lastX, in.lastY = x, y
}

func (in *desktopInput) scroll(delta float32) {
	if in.desktopNav {
		in.sc.Orbit().Zoom(delta)
	}
}

// keyDown runs bound controls first, then desktop navigation keys.
func (in *desktopInput) keyDown(code uint32) {
	if in.sc.HandleKey(code) || !in.desktopNav {
		return
	}

	orbit := in.sc.Orbit()
	switch code {
	case common.KeyW:
		orbit.Pan(0, 0, 1)
	case common.KeyS:
		orbit.Pan(0, 0, -1)
	case common.KeyA:
		orbit.Pan(-1, 0, 0)
	case common.KeyD:
		orbit.Pan(1, 0, 0)
	case common.KeyLeft:
		orbit.Orbit(-1, 0)
	case common.KeyRight:
		orbit.Orbit(1, 0)
	case common.KeyUp:
		orbit.Orbit(0, 1)
	case common.KeyDown:
		orbit.Orbit(0, -1)
	}
}
