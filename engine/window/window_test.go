package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/stretchr/testify/assert"
)

func TestAxes_NoGamepad(t *testing.T) {
	w := newEngineWindow()

	axes, ok := w.Axes(common.HandLeft)
	assert.False(t, ok)
	assert.Nil(t, axes)
	assert.Zero(t, w.ConnectedControllers())
}

func TestAxes_SplitsSticksIntoHands(t *testing.T) {
	w := newEngineWindow()
	w.storeGamepad(2, [4]float32{0.5, -0.75, 0.9, -1})

	left, ok := w.Axes(common.HandLeft)
	assert.True(t, ok)
	assert.Equal(t, []float32{0.5, -0.75, 0, 0}, left)

	right, ok := w.Axes(common.HandRight)
	assert.True(t, ok)
	assert.Equal(t, []float32{0, 0, 0.9, -1}, right)

	assert.Equal(t, 2, w.ConnectedControllers())
}

func TestAxes_DefaultDeadzone(t *testing.T) {
	w := newEngineWindow()
	w.storeGamepad(1, [4]float32{0.1, -0.14, DefaultAxisDeadzone, -0.2})

	left, _ := w.Axes(common.HandLeft)
	assert.Equal(t, []float32{0, 0, 0, 0}, left)

	right, _ := w.Axes(common.HandRight)
	assert.Equal(t, []float32{0, 0, DefaultAxisDeadzone, -0.2}, right)
}

func TestAxes_ConfiguredDeadzone(t *testing.T) {
	cases := []struct {
		name     string
		deadzone float32
		want     []float32
	}{
		{"wider", 0.3, []float32{0, 0, 0, 0}},
		{"disabled", 0, []float32{0, 0, 0.05, -0.25}},
		{"clamped", 5, []float32{0, 0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newEngineWindow(WithGamepadDeadzone(tc.deadzone))
			w.storeGamepad(1, [4]float32{0, 0, 0.05, -0.25})

			right, ok := w.Axes(common.HandRight)
			assert.True(t, ok)
			assert.Equal(t, tc.want, right)
		})
	}
}

func TestAxes_DisconnectClearsState(t *testing.T) {
	w := newEngineWindow()
	w.storeGamepad(1, [4]float32{1, 1, 1, 1})
	w.storeGamepad(0, [4]float32{})

	_, ok := w.Axes(common.HandRight)
	assert.False(t, ok)
}

func TestNewEngineWindow_Options(t *testing.T) {
	w := newEngineWindow(
		WithTitle("Showroom"),
		WithSize(800, 600),
		WithMinSize(320, 240),
		WithMaxSize(1920, 1080),
	)
	assert.Equal(t, "Showroom", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 240, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 1080, w.maxHeight)
	assert.Equal(t, DefaultAxisDeadzone, w.deadzone)
	assert.Nil(t, w.SurfaceDescriptor())
	assert.False(t, w.IsRunning())
}

func TestNewEngineWindow_SizeFitsLimits(t *testing.T) {
	cases := []struct {
		name          string
		options       []WindowBuilderOption
		width, height int
	}{
		{"defaults", nil, 1280, 720},
		{"non-positive size keeps default", []WindowBuilderOption{WithSize(0, -1)}, 1280, 720},
		{"below minimum", []WindowBuilderOption{WithSize(100, 100)}, 640, 360},
		{"above maximum", []WindowBuilderOption{WithSize(8000, 5000)}, 3840, 2160},
		{"max below min", []WindowBuilderOption{WithMinSize(800, 600), WithMaxSize(400, 300), WithSize(1000, 1000)}, 800, 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newEngineWindow(tc.options...)
			assert.Equal(t, tc.width, w.Width())
			assert.Equal(t, tc.height, w.Height())
			assert.LessOrEqual(t, w.minWidth, w.maxWidth)
			assert.LessOrEqual(t, w.minHeight, w.maxHeight)
		})
	}
}

func TestScaleCursor(t *testing.T) {
	cases := []struct {
		name                 string
		x, y                 float64
		winW, winH, fbW, fbH int
		wantX, wantY         int32
	}{
		{"same size", 100, 50, 800, 600, 800, 600, 100, 50},
		{"retina", 100.5, 50.25, 800, 600, 1600, 1200, 201, 100},
		{"fractional scale", 200, 100, 1000, 500, 1250, 625, 250, 125},
		{"minimized", 30, 40, 0, 0, 0, 0, 30, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := scaleCursor(tc.x, tc.y, tc.winW, tc.winH, tc.fbW, tc.fbH)
			assert.Equal(t, tc.wantX, x)
			assert.Equal(t, tc.wantY, y)
		})
	}
}
