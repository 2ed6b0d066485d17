package main

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/config"
	"github.com/Faultbox/mountainhome/internal/engine/camera"
	"github.com/Faultbox/mountainhome/internal/engine/debug"
	"github.com/Faultbox/mountainhome/internal/engine/input"
	"github.com/Faultbox/mountainhome/internal/engine/lighting"
	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/mesh"
	"github.com/Faultbox/mountainhome/internal/engine/renderer"
	"github.com/Faultbox/mountainhome/internal/engine/scene"
	"github.com/Faultbox/mountainhome/internal/engine/terrain"
	"github.com/Faultbox/mountainhome/internal/engine/window"
	"github.com/Faultbox/mountainhome/internal/logger"
	"github.com/Faultbox/mountainhome/pkg/tile"
)

// orbitSpeed is the camera's angular speed in radians per second.
const orbitSpeed = 0.25

type viewer struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	chunks   *renderer.ChunkRenderer
	scene    *scene.Scene
	terrain  *terrain.Terrain

	input  *input.Input
	camera *camera.OrbitCamera
	orbit  bool
	shots  *debug.ScreenshotCapture
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		shots:  debug.NewScreenshotCapture(cfg.Data.Screenshots, "terrain"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Mountainhome",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context created with the window.
	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.DefaultConfig(w, h), logger.Named("renderer"))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.chunks, err = renderer.NewChunkRenderer(logger.Named("renderer"))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create chunk renderer: %w", err)
	}

	v.scene = scene.New(scene.WithUploader(v.chunks), scene.WithLogger(logger.Named("scene")))
	if err := v.loadTerrain(); err != nil {
		v.Close()
		return nil, err
	}

	st := v.scene.Stats()
	v.log.Info("viewer initialized",
		zap.Int("chunks", st.Entities),
		zap.Int("triangles", st.Triangles))
	return v, nil
}

func (v *viewer) loadTerrain() error {
	tc := v.cfg.Terrain
	simplify := lod.DefaultOptions()
	simplify.MaxCost = tc.ReductionMaxCost

	var err error
	v.terrain, err = terrain.New(terrain.Options{
		Width:         tc.Width,
		Height:        tc.Height,
		Depth:         tc.Depth,
		Backend:       tc.Backend,
		ChunkSize:     tc.ChunkSize,
		PolyReduction: tc.PolyReduction,
		AutoUpdate:    false,
		Material:      tc.Material,
		Simplify:      simplify,
		Logger:        logger.Named("terrain"),
	}, v.scene)
	if err != nil {
		return fmt.Errorf("failed to create terrain: %w", err)
	}

	loaded := false
	if path := v.cfg.Data.WorldPath; path != "" {
		err := v.terrain.Load(path)
		switch {
		case err == nil:
			loaded = true
		case terrain.IsSaveMissing(err):
			v.log.Warn("world file not found, laying a flat floor", zap.String("path", path))
		default:
			return fmt.Errorf("failed to load world %s: %w", path, err)
		}
	} else {
		v.log.Info("no world configured, laying a flat floor")
	}
	if !loaded {
		floor := tile.New("floor")
		for y := 0; y < v.terrain.Height(); y++ {
			for x := 0; x < v.terrain.Width(); x++ {
				v.terrain.SetTile(x, y, 0, floor)
			}
		}
	}

	v.terrain.Populate()
	v.terrain.SetAutoUpdate(v.cfg.Terrain.AutoUpdate)
	v.chunks.MaxHeight = float32(v.terrain.Depth())
	return nil
}

// Run renders until the window is closed.
func (v *viewer) Run() error {
	v.resetCamera()
	lightDir := lighting.DefaultSun().Direction()

	var frameBudget time.Duration
	if v.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Graphics.FPSLimit)
	}

	last := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")
	for {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(last).Seconds())
		last = frameStart

		frame := v.input.Update()
		if frame.Quit {
			return nil
		}
		if frame.Resized {
			v.renderer.Resize(v.window.DrawableSize())
		}
		v.handleFrame(frame, dt)

		v.renderer.Begin()
		v.chunks.Render(v.camera.ViewProjection(v.renderer.Aspect()), lightDir)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
}

func (v *viewer) handleFrame(frame input.Frame, dt float32) {
	for _, a := range frame.Actions {
		switch a {
		case input.ActionTogglePolyReduction:
			on := !v.terrain.PolyReduction()
			v.terrain.SetPolyReduction(on)
			v.terrain.Populate()
			st := v.scene.Stats()
			v.log.Info("poly reduction toggled",
				zap.Bool("enabled", on),
				zap.Int("triangles", st.Triangles))
		case input.ActionToggleOrbit:
			v.orbit = !v.orbit
		case input.ActionResetCamera:
			v.resetCamera()
		case input.ActionScreenshot:
			pixels, w, h := v.renderer.ReadPixels()
			path, err := v.shots.CaptureFromPixels(pixels, w, h)
			if err != nil {
				v.log.Error("screenshot failed", zap.Error(err))
				continue
			}
			v.log.Info("screenshot saved", zap.String("path", path))
		}
	}

	if frame.DragX != 0 || frame.DragY != 0 {
		v.orbit = false
		v.camera.HandleDrag(frame.DragX, frame.DragY)
	}
	if frame.Wheel != 0 {
		v.camera.HandleZoom(frame.Wheel)
	}
	if f, r := v.input.Movement(); f != 0 || r != 0 {
		v.camera.HandleMovement(f, r)
	}
	if v.orbit {
		v.camera.Rotate(orbitSpeed * dt)
	}
}

func (v *viewer) resetCamera() {
	bounds, ok := v.scene.Bounds()
	if !ok {
		bounds = mesh.Bounds{Max: mgl32.Vec3{float32(v.terrain.Width()), float32(v.terrain.Height()), 1}}
	}
	v.camera.FitToBounds(bounds)
	v.orbit = true
}

// Close releases GPU and window resources.
func (v *viewer) Close() {
	v.log.Info("closing viewer")
	if v.scene != nil {
		v.scene.Clear()
	}
	if v.chunks != nil {
		v.chunks.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
