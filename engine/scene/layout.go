package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/audio"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/goccy/go-yaml"
)

//go:embed layout.yaml
var defaultLayout []byte

// ErrInvalidLayout is wrapped by every layout validation failure.
var ErrInvalidLayout = errors.New("invalid layout")

// ControlAction names what a control does when selected.
type ControlAction string

const (
	ActionNextAnimation     ControlAction = "next_animation"
	ActionPreviousAnimation ControlAction = "previous_animation"
	ActionToggleAnimation   ControlAction = "toggle_animation"
	ActionNextTrack         ControlAction = "next_track"
)

// targetsModel reports whether the action operates on a model's animations.
func (a ControlAction) targetsModel() bool {
	switch a {
	case ActionNextAnimation, ActionPreviousAnimation, ActionToggleAnimation:
		return true
	}
	return false
}

func (a ControlAction) valid() bool {
	return a.targetsModel() || a == ActionNextTrack
}

// Layout is the declarative showroom description.
type Layout struct {
	Name       string           `yaml:"name"`
	AssetRoot  string           `yaml:"asset_root"`
	Background [3]float64       `yaml:"background"`
	Models     []ModelPlacement `yaml:"models"`
	Controls   []Control        `yaml:"controls"`
	Audio      AudioConfig      `yaml:"audio"`
	Movement   MovementConfig   `yaml:"movement"`
	Orbit      OrbitConfig      `yaml:"orbit"`
}

// ModelPlacement places one model asset in the scene.
type ModelPlacement struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`

	// Animation is an optional separate asset whose clips are merged into the model's controller.
	Animation string `yaml:"animation"`

	Position [3]float32 `yaml:"position"`
	// Rotation is in degrees around X, Y and Z.
	Rotation [3]float32 `yaml:"rotation"`
	// Scale holds one uniform value or three per-axis values. Empty means 1.
	Scale []float32 `yaml:"scale"`

	AutoPlay      bool    `yaml:"autoplay"`
	StripVertical bool    `yaml:"strip_vertical"`
	HeadFollow    bool    `yaml:"head_follow"`
	TimeScale     float32 `yaml:"time_scale"`
}

// RotationRadians converts Rotation to radians.
//
// Returns:
//   - mgl32.Vec3: the rotation in radians
func (p ModelPlacement) RotationRadians() mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.DegToRad(p.Rotation[0]),
		mgl32.DegToRad(p.Rotation[1]),
		mgl32.DegToRad(p.Rotation[2]),
	}
}

// ScaleVec expands Scale to three axes.
//
// Returns:
//   - mgl32.Vec3: the per-axis scale
func (p ModelPlacement) ScaleVec() mgl32.Vec3 {
	switch len(p.Scale) {
	case 1:
		return mgl32.Vec3{p.Scale[0], p.Scale[0], p.Scale[0]}
	case 3:
		return mgl32.Vec3{p.Scale[0], p.Scale[1], p.Scale[2]}
	default:
		return mgl32.Vec3{1, 1, 1}
	}
}

// Control is a selectable hit-target. A control with zero radius is keyboard only.
type Control struct {
	ID       string        `yaml:"id"`
	Position [3]float32    `yaml:"position"`
	Radius   float32       `yaml:"radius"`
	Color    [3]float32    `yaml:"color"`
	Action   ControlAction `yaml:"action"`
	Target   string        `yaml:"target"`

	// RequiresClips hides the control until its target has at least one clip.
	RequiresClips bool `yaml:"requires_clips"`

	// Key is a letter or SPACE bound to the control.
	Key string `yaml:"key"`
}

// Spatial reports whether the control can be hit by a ray.
//
// Returns:
//   - bool: true if the control has a radius
func (c Control) Spatial() bool {
	return c.Radius > 0
}

// KeyCode returns the window key code bound to the control.
//
// Returns:
//   - uint32: the key code
//   - bool: false if no key is bound
func (c Control) KeyCode() (uint32, bool) {
	return parseKey(c.Key)
}

// AudioConfig configures the background playlist.
type AudioConfig struct {
	Volume     *float64      `yaml:"volume"`
	Loop       *bool         `yaml:"loop"`
	RetryDelay string        `yaml:"retry_delay"`
	Tracks     []audio.Track `yaml:"tracks"`
}

// Retry parses RetryDelay, falling back to audio.DefaultRetryDelay.
//
// Returns:
//   - time.Duration: the delay
func (a AudioConfig) Retry() time.Duration {
	if a.RetryDelay == "" {
		return audio.DefaultRetryDelay
	}
	d, err := time.ParseDuration(a.RetryDelay)
	if err != nil || d <= 0 {
		return audio.DefaultRetryDelay
	}
	return d
}

// MovementConfig configures the thumbstick rig.
type MovementConfig struct {
	Speed         float32    `yaml:"speed"`
	RotationSpeed float32    `yaml:"rotation_speed"`
	EyeHeight     float32    `yaml:"eye_height"`
	Start         [3]float32 `yaml:"start"`
}

// OrbitConfig configures the desktop orbit camera.
type OrbitConfig struct {
	Target [3]float32 `yaml:"target"`
	Radius float32    `yaml:"radius"`
}

// DefaultLayout returns the embedded showroom layout.
//
// Returns:
//   - *Layout: the parsed layout
//   - error: a parse or validation error; the embedded layout is expected to be valid
func DefaultLayout() (*Layout, error) {
	return ParseLayout(defaultLayout)
}

// LoadLayout reads and parses a layout file.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - *Layout: the parsed layout
//   - error: a read, parse or validation error
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout %s: %w", path, err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes YAML, rejecting unknown fields, and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Layout: the parsed layout
//   - error: a decode error, or an error wrapping ErrInvalidLayout
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.UnmarshalWithOptions(data, &l, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks identifiers, references and numeric ranges.
//
// Returns:
//   - error: the first problem found, wrapping ErrInvalidLayout
func (l *Layout) Validate() error {
	models := make(map[string]bool, len(l.Models))
	for i, m := range l.Models {
		if m.ID == "" {
			return fmt.Errorf("%w: model %d has no id", ErrInvalidLayout, i)
		}
		if models[m.ID] {
			return fmt.Errorf("%w: duplicate model id %q", ErrInvalidLayout, m.ID)
		}
		if m.Path == "" {
			return fmt.Errorf("%w: model %q has no path", ErrInvalidLayout, m.ID)
		}
		if n := len(m.Scale); n != 0 && n != 1 && n != 3 {
			return fmt.Errorf("%w: model %q scale needs 1 or 3 values, got %d", ErrInvalidLayout, m.ID, n)
		}
		if m.TimeScale < 0 {
			return fmt.Errorf("%w: model %q has negative time_scale", ErrInvalidLayout, m.ID)
		}
		models[m.ID] = true
	}

	controls := make(map[string]bool, len(l.Controls))
	for i, c := range l.Controls {
		if c.ID == "" {
			return fmt.Errorf("%w: control %d has no id", ErrInvalidLayout, i)
		}
		if controls[c.ID] {
			return fmt.Errorf("%w: duplicate control id %q", ErrInvalidLayout, c.ID)
		}
		if !c.Action.valid() {
			return fmt.Errorf("%w: control %q has unknown action %q", ErrInvalidLayout, c.ID, c.Action)
		}
		if c.Action.targetsModel() && !models[c.Target] {
			return fmt.Errorf("%w: control %q targets unknown model %q", ErrInvalidLayout, c.ID, c.Target)
		}
		if c.Radius < 0 || math.IsNaN(float64(c.Radius)) {
			return fmt.Errorf("%w: control %q has invalid radius", ErrInvalidLayout, c.ID)
		}
		if c.Key != "" {
			if _, ok := parseKey(c.Key); !ok {
				return fmt.Errorf("%w: control %q has unknown key %q", ErrInvalidLayout, c.ID, c.Key)
			}
		}
		controls[c.ID] = true
	}

	if v := l.Audio.Volume; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("%w: audio volume %v outside [0, 1]", ErrInvalidLayout, *v)
	}
	for i, t := range l.Audio.Tracks {
		if t.ID == "" || t.Path == "" {
			return fmt.Errorf("%w: track %d needs an id and a path", ErrInvalidLayout, i)
		}
	}
	return nil
}

func parseKey(key string) (uint32, bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	switch {
	case k == "":
		return 0, false
	case k == "SPACE":
		return common.KeySpace, true
	case len(k) == 1 && (k[0] >= 'A' && k[0] <= 'Z' || k[0] >= '0' && k[0] <= '9'):
		// GLFW uses ASCII for printable keys
		return uint32(k[0]), true
	}
	return 0, false
}
