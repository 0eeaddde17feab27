package xr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeControllers int

func (f fakeControllers) ConnectedControllers() int {
	return int(f)
}

func passing(name string, calls *[]string) Probe {
	return NewProbe(name, func(context.Context) error {
		*calls = append(*calls, name)
		return nil
	})
}

func failing(name string, calls *[]string) Probe {
	return NewProbe(name, func(context.Context) error {
		*calls = append(*calls, name)
		return errors.New("missing")
	})
}

func TestDetect(t *testing.T) {
	var calls []string
	got := Detect(context.Background(), passing("a", &calls), failing("b", &calls), passing("c", &calls))

	assert.False(t, got.Supported)
	assert.Equal(t, "b: missing", got.Reason)
	assert.Equal(t, "b", got.Probe)
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, SessionInline, got.SessionMode())
	assert.Contains(t, got.Advisory(), "Reason: b: missing")
}

func TestDetectSupported(t *testing.T) {
	var calls []string
	got := Detect(context.Background(), passing("a", &calls))

	assert.Equal(t, Capability{Supported: true}, got)
	assert.Empty(t, got.Advisory())
	assert.Equal(t, SessionImmersiveVR, got.SessionMode())
	assert.True(t, Detect(context.Background()).Supported)
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	got := Detect(ctx, passing("a", &calls))
	assert.False(t, got.Supported)
	assert.Contains(t, got.Reason, "cancelled")
	assert.Empty(t, calls)
}

func TestRuntimeProbe(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "active_runtime.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"file_format_version":"1.0.0","runtime":{"name":"Monado","library_path":"libopenxr_monado.so"}}`), 0o644))
	noLib := filepath.Join(dir, "nolib.json")
	require.NoError(t, os.WriteFile(noLib, []byte(`{"runtime":{"name":"broken"}}`), 0o644))
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`{`), 0o644))
	missing := filepath.Join(dir, "missing.json")

	tests := []struct {
		name  string
		paths []string
		want  error
	}{
		{name: "valid", paths: []string{valid}},
		{name: "first missing", paths: []string{missing, valid}},
		{name: "none", paths: []string{missing}, want: ErrNoRuntime},
		{name: "no library", paths: []string{noLib}, want: ErrInvalidManifest},
		{name: "malformed", paths: []string{garbage}, want: ErrInvalidManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RuntimeProbe(tt.paths...).Check(context.Background())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRuntimeManifestPathsHonorsEnv(t *testing.T) {
	t.Setenv(RuntimeEnv, "/opt/xr/runtime.json")
	paths := RuntimeManifestPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "/opt/xr/runtime.json", paths[0])
}

func TestControllerProbe(t *testing.T) {
	assert.ErrorIs(t, ControllerProbe(fakeControllers(0)).Check(context.Background()), ErrNoController)
	assert.ErrorIs(t, ControllerProbe(nil).Check(context.Background()), ErrNoController)
	assert.NoError(t, ControllerProbe(fakeControllers(2)).Check(context.Background()))

	got := Detect(context.Background(), ControllerProbe(fakeControllers(0)))
	assert.Equal(t, ProbeController, got.Probe)
	assert.Contains(t, got.Advisory(), "gamepad")
}

func TestSessionOptionsLayersNeverNil(t *testing.T) {
	opts := NewSessionOptions(SessionImmersiveVR)
	assert.NotNil(t, opts.Layers)
	assert.Empty(t, opts.Layers)

	withLayers := NewSessionOptions(SessionInline, "projection")
	assert.Equal(t, []string{"projection"}, withLayers.Layers)
}

func TestCapabilitySession(t *testing.T) {
	cases := []struct {
		name        string
		supported   bool
		forceInline bool
		want        string
	}{
		{"supported", true, false, SessionImmersiveVR},
		{"supported but forced inline", true, true, SessionInline},
		{"unsupported", false, false, SessionInline},
		{"unsupported and forced", false, true, SessionInline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := Capability{Supported: tc.supported}.Session(tc.forceInline)
			assert.Equal(t, tc.want, opts.Mode)
			assert.Equal(t, tc.want == SessionImmersiveVR, opts.Immersive())
			assert.NotNil(t, opts.Layers)
		})
	}

	opts := Capability{Supported: true}.Session(false, "projection")
	assert.Equal(t, []string{"projection"}, opts.Layers)
}
