// Command oxy-vr runs the showroom: animated avatars, cars and a music playlist
// that can be explored with tracked controllers or, on desktop, the mouse and keyboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine"
	"github.com/Carmen-Shannon/oxy-vr/engine/audio"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
	"github.com/Carmen-Shannon/oxy-vr/engine/xr"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	layoutFlag   = flag.String("layout", "", "Path to a layout YAML file (default: the built-in showroom)")
	logFileFlag  = flag.String("logfile", "", "Write logs to this file instead of the console")
	profileFlag  = flag.Duration("profile", 0, "Log loop rate and memory statistics at this interval, e.g. 1s (0 disables)")
	tickRateFlag = flag.Float64("tickrate", 60, "Scene updates per second")
	desktopFlag  = flag.Bool("desktop", false, "Force desktop mode even when immersive VR is available")
	uncappedFlag = flag.Bool("uncapped", false, "Present frames without waiting for vertical blank")
	widthFlag    = flag.Int("width", 1280, "Initial window width")
	heightFlag   = flag.Int("height", 720, "Initial window height")
	deadzoneFlag = flag.Float64("deadzone", float64(window.DefaultAxisDeadzone), "Gamepad stick deadzone")
	levelFlag    logLevelFlag
)

func main() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)

	if *logFileFlag != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   *logFileFlag,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
		})
	}

	if err := run(); err != nil {
		slog.Error("showroom stopped", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	layout, err := loadLayout(*layoutFlag)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle("Oxy VR - "+common.Coalesce(layout.Name, "showroom")),
		window.WithSize(*widthFlag, *heightFlag),
		window.WithGamepadDeadzone(float32(*deadzoneFlag)),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	capability := xr.Detect(ctx, xr.DefaultProbes(win)...)
	cancel()
	if !capability.Supported {
		fmt.Print(capability.Advisory())
	}
	session := capability.Session(*desktopFlag)
	slog.Info("showroom: session", "mode", session.Mode, "layers", session.Layers, "forced_inline", *desktopFlag)

	presentMode := renderer.PresentModeVSync
	if *uncappedFlag {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(win,
		renderer.WithPresentMode(presentMode),
		renderer.WithClearColor(layout.Background),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	aspect := float32(16) / 9
	if win.Height() > 0 {
		aspect = float32(win.Width()) / float32(win.Height())
	}
	cam := camera.NewCamera(camera.WithAspect(aspect))

	opts := []scene.SceneBuilderOption{
		scene.WithCamera(cam),
		scene.WithRenderer(r),
		scene.WithAxisSource(win),
		scene.WithSession(session),
	}
	if backend, err := audio.NewEbitenBackend(audio.DefaultSampleRate); err != nil {
		slog.Warn("showroom: audio unavailable, running silent", "error", err)
	} else {
		opts = append(opts, scene.WithAudioBackend(backend))
	}
	sc := scene.NewScene(layout, opts...)

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithTickRate(*tickRateFlag),
		engine.WithProfiling(*profileFlag),
		engine.WithScene(0, sc),
		engine.WithStartScenes(true),
	)

	in := newDesktopInput(sc, cam, func() (int, int) { return win.Width(), win.Height() })
	win.SetLeftMouseDownCallback(in.leftDown)
	win.SetMiddleMouseDownCallback(in.middleDown)
	win.SetMiddleMouseUpCallback(in.middleUp)
	win.SetMouseMoveCallback(in.move)
	win.SetScrollCallback(in.scroll)
	win.SetKeyDownCallback(in.keyDown)

	eng.Run()
	return nil
}

func loadLayout(path string) (*scene.Layout, error) {
	if path == "" {
		return scene.DefaultLayout()
	}
	return scene.LoadLayout(path)
}
