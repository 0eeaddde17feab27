package xr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Capability is the outcome of immersive support detection.
// Code that only makes sense in an immersive session checks Supported first.
type Capability struct {
	// Supported is true when every probe passed.
	Supported bool

	// Reason explains the first failed probe. Empty when Supported.
	Reason string

	// Probe names the first failed probe. Empty when Supported.
	Probe string
}

// Probe checks one precondition of an immersive session.
type Probe interface {
	// Name identifies the probe in reasons and logs.
	//
	// Returns:
	//   - string: the probe name
	Name() string

	// Check runs the probe.
	//
	// Parameters:
	//   - ctx: cancels a slow probe
	//
	// Returns:
	//   - error: nil if the precondition holds, otherwise why it does not
	Check(ctx context.Context) error
}

// probeFunc adapts a function to Probe.
type probeFunc struct {
	name string
	fn   func(ctx context.Context) error
}

var _ Probe = &probeFunc{}

// NewProbe wraps a check function as a Probe.
//
// Parameters:
//   - name: the probe name
//   - fn: the check
//
// Returns:
//   - Probe: the probe
func NewProbe(name string, fn func(ctx context.Context) error) Probe {
	return &probeFunc{name: name, fn: fn}
}

func (p *probeFunc) Name() string {
	return p.name
}

func (p *probeFunc) Check(ctx context.Context) error {
	return p.fn(ctx)
}

// Detect runs the probes in order and stops at the first failure.
// No probes means nothing was required, which counts as supported.
//
// Parameters:
//   - ctx: cancels detection; a cancelled context reports unsupported
//   - probes: the preconditions to check
//
// Returns:
//   - Capability: Supported, or the first failure's reason
func Detect(ctx context.Context, probes ...Probe) Capability {
	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return Capability{Reason: fmt.Sprintf("detection cancelled: %v", err), Probe: p.Name()}
		}
		if err := p.Check(ctx); err != nil {
			slog.Info("xr: probe failed", "probe", p.Name(), "error", err)
			return Capability{Reason: fmt.Sprintf("%s: %v", p.Name(), err), Probe: p.Name()}
		}
		slog.Debug("xr: probe passed", "probe", p.Name())
	}
	return Capability{Supported: true}
}

// Advisory renders the message shown when immersive mode is unavailable.
//
// Returns:
//   - string: the advisory, empty when Supported
func (c Capability) Advisory() string {
	if c.Supported {
		return ""
	}

	var b strings.Builder
	b.WriteString("Immersive VR is not available on this system.\n")
	fmt.Fprintf(&b, "Reason: %s\n", c.Reason)
	b.WriteString("The showroom will run in desktop mode: drag with the middle mouse button to orbit, scroll to zoom, WASD to pan, click the spheres to use the controls.\n")
	b.WriteString("Recommendations:\n")
	for _, r := range recommendations(c.Probe) {
		fmt.Fprintf(&b, "  - %s\n", r)
	}
	return b.String()
}

func recommendations(probe string) []string {
	switch probe {
	case ProbeRuntime:
		return []string{
			"Install an OpenXR runtime (SteamVR, Monado, or the headset vendor's runtime) and set it as active.",
			"Or point XR_RUNTIME_JSON at the runtime's manifest.",
		}
	case ProbeController:
		return []string{
			"Connect and power on the tracked controllers or a gamepad.",
		}
	case ProbeAdapter:
		return []string{
			"Update the graphics driver; a Vulkan, Metal or Direct3D 12 capable GPU is required.",
		}
	default:
		return []string{
			"Check that the headset is connected and its runtime is running.",
		}
	}
}

// SessionOptions carries the parameters of an immersive session request.
type SessionOptions struct {
	// Mode is the session mode, "immersive-vr" or "inline".
	Mode string

	// Layers is the composition layer list. It is never nil.
	Layers []string
}

// NewSessionOptions creates SessionOptions for a mode with an empty layer list.
//
// Parameters:
//   - mode: the session mode
//   - layers: optional composition layers
//
// Returns:
//   - SessionOptions: the options
func NewSessionOptions(mode string, layers ...string) SessionOptions {
	return SessionOptions{Mode: mode, Layers: append([]string{}, layers...)}
}

// Immersive reports whether the options request a head-mounted session.
//
// Returns:
//   - bool: true for SessionImmersiveVR
func (o SessionOptions) Immersive() bool {
	return o.Mode == SessionImmersiveVR
}

// Session builds the session request for this capability. The request is inline
// when immersive sessions are unsupported or forceInline is set.
//
// Parameters:
//   - forceInline: request an on-screen session even when immersive is available
//   - layers: optional composition layers
//
// Returns:
//   - SessionOptions: the session request, with a non-nil layer list
func (c Capability) Session(forceInline bool, layers ...string) SessionOptions {
	mode := c.SessionMode()
	if forceInline {
		mode = SessionInline
	}
	return NewSessionOptions(mode, layers...)
}

// SessionMode returns the session mode a capability allows.
//
// Returns:
//   - string: "immersive-vr" when Supported, otherwise "inline"
func (c Capability) SessionMode() string {
	if c.Supported {
		return SessionImmersiveVR
	}
	return SessionInline
}

const (
	// SessionImmersiveVR is a head-mounted session.
	SessionImmersiveVR = "immersive-vr"
	// SessionInline is an on-screen session.
	SessionInline = "inline"
)
