//go:build !nogl

// Command bgview opens a window and renders the terminal background-image
// layer on its own, for eyeballing scaling, tiling and opacity behavior.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/iczelia/alacritty/display"
	"github.com/iczelia/alacritty/internal/config"
	"github.com/iczelia/alacritty/renderer"
	"github.com/iczelia/alacritty/renderer/glapi"
)

func init() {
	// GLFW and the GL context are bound to the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		imagePath  = flag.String("image", "", "background image path (overrides config)")
		opacity    = flag.Float64("opacity", 1, "background opacity, clamped into [0,1] (overrides config)")
		width      = flag.Int("width", 800, "initial window width")
		height     = flag.Int("height", 600, "initial window height")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	renderer.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
	}
	if *imagePath != "" {
		cfg.Background.Image = *imagePath
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "opacity" {
			cfg.Background.Opacity = config.Clamp01(float32(*opacity))
		}
	})
	if cfg.Background.Image == "" {
		logger.Error("no background image configured; pass -image or -config")
		os.Exit(1)
	}

	if err := run(cfg, *width, *height); err != nil {
		logger.Error("bgview failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, width, height int) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(width, height, "bgview", nil, nil)
	if err != nil {
		return err
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return err
	}

	bg, err := renderer.New(glapi.NewGL(), glapi.Glsl3)
	if err != nil {
		return err
	}
	bg.SetBackground(cfg.Background.Image)

	gl.Enable(gl.BLEND)

	for !win.ShouldClose() {
		w, h := win.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		if bg.ShouldDraw() {
			size := display.NewSizeInfo(float32(w), float32(h))
			bg.Draw(size, cfg.Background.Opacity)
		}

		win.SwapBuffers()
		glfw.WaitEvents()
	}
	return nil
}
