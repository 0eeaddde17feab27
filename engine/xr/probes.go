package xr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/goccy/go-json"
)

// Probe names.
const (
	ProbeRuntime    = "openxr runtime"
	ProbeController = "controller"
	ProbeAdapter    = "gpu adapter"
)

// RuntimeEnv overrides the active runtime manifest location, as the OpenXR loader does.
const RuntimeEnv = "XR_RUNTIME_JSON"

var (
	// ErrNoRuntime is returned when no active runtime manifest is found.
	ErrNoRuntime = errors.New("no active OpenXR runtime")

	// ErrInvalidManifest is returned for a manifest without a runtime library.
	ErrInvalidManifest = errors.New("invalid OpenXR runtime manifest")

	// ErrNoController is returned when no tracked controller or gamepad is connected.
	ErrNoController = errors.New("no controller connected")
)

// runtimeManifest is the part of an OpenXR active_runtime.json the probe reads.
type runtimeManifest struct {
	FileFormatVersion string `json:"file_format_version"`
	Runtime           struct {
		Name        string `json:"name"`
		LibraryPath string `json:"library_path"`
	} `json:"runtime"`
}

// RuntimeManifestPaths lists where the active runtime manifest is looked up, in order.
// XR_RUNTIME_JSON comes first when set. Only Linux has well-known file locations; elsewhere the
// runtime is registered in the OS and only the environment override is checked.
//
// Returns:
//   - []string: candidate manifest paths
func RuntimeManifestPaths() []string {
	var paths []string
	if env := os.Getenv(RuntimeEnv); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS != "linux" {
		return paths
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "openxr", "1", "active_runtime.json"))
	}
	return append(paths, "/etc/xdg/openxr/1/active_runtime.json")
}

// RuntimeProbe checks for an active OpenXR runtime manifest.
//
// Parameters:
//   - paths: candidate manifest paths, RuntimeManifestPaths() when empty
//
// Returns:
//   - Probe: the probe
func RuntimeProbe(paths ...string) Probe {
	return NewProbe(ProbeRuntime, func(_ context.Context) error {
		candidates := paths
		if len(candidates) == 0 {
			candidates = RuntimeManifestPaths()
		}

		for _, path := range candidates {
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var m runtimeManifest
			if err := json.Unmarshal(data, &m); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
			}
			if m.Runtime.LibraryPath == "" {
				return fmt.Errorf("%w: %s has no runtime.library_path", ErrInvalidManifest, path)
			}
			slog.Debug("xr: active runtime", "name", m.Runtime.Name, "manifest", path)
			return nil
		}
		return ErrNoRuntime
	})
}

// ControllerSource reports connected input devices.
type ControllerSource interface {
	// ConnectedControllers returns how many tracked controllers or gamepads are connected.
	//
	// Returns:
	//   - int: the device count
	ConnectedControllers() int
}

// ControllerProbe checks that at least one controller is connected.
//
// Parameters:
//   - src: the device source, typically the window
//
// Returns:
//   - Probe: the probe
func ControllerProbe(src ControllerSource) Probe {
	return NewProbe(ProbeController, func(_ context.Context) error {
		if src == nil || src.ConnectedControllers() == 0 {
			return ErrNoController
		}
		return nil
	})
}

// AdapterProbe checks that the GPU exposes a WebGPU adapter.
//
// Returns:
//   - Probe: the probe
func AdapterProbe() Probe {
	return NewProbe(ProbeAdapter, func(_ context.Context) error {
		instance := wgpu.CreateInstance(nil)
		defer instance.Release()

		adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
		if err != nil {
			return fmt.Errorf("failed to request adapter: %w", err)
		}
		defer adapter.Release()

		info := adapter.GetInfo()
		slog.Debug("xr: gpu adapter", "name", info.Name)
		return nil
	})
}

// DefaultProbes returns the probes run at startup: runtime, controller, then GPU.
//
// Parameters:
//   - controllers: the device source for the controller probe
//
// Returns:
//   - []Probe: the probes in order
func DefaultProbes(controllers ControllerSource) []Probe {
	return []Probe{RuntimeProbe(), ControllerProbe(controllers), AdapterProbe()}
}
