package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/audio"
	"github.com/Carmen-Shannon/flip/coin"
	"github.com/Carmen-Shannon/flip/config"
	"github.com/Carmen-Shannon/flip/engine"
	"github.com/Carmen-Shannon/flip/engine/camera"
	"github.com/Carmen-Shannon/flip/engine/environment"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/scene"
	"github.com/Carmen-Shannon/flip/engine/window"
	"github.com/chewxy/math32"
)

var (
	configPath = flag.String("config", "", "YAML config file, layered over the built-in defaults")
	watch      = flag.Bool("watch", false, "reload the look of the scene when the config file changes")
	profile    = flag.Bool("profile", false, "log frame and memory statistics")
	seed       = flag.Uint64("seed", 0, "seed for the flip cycles, 0 for a random seed")
	withAudio  = flag.Bool("audio", false, "play a chime when the coin lands, overrides audio.enabled")
	software   = flag.Bool("software", false, "force the software (fallback) adapter")
	fps        = flag.Float64("fps", -1, "render frame cap, 0 for uncapped, overrides render.frame_limit")
)

const sceneKey = 0

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("flip: %v", err)
	}
	presentMode, err := cfg.PresentMode()
	if err != nil {
		log.Fatalf("flip: %v", err)
	}
	frameLimit := cfg.Render.FrameLimit
	if *fps >= 0 {
		frameLimit = *fps
	}

	// ── Window + Engine ─────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMaxPixelRatio(cfg.Window.MaxPixelRatio),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(cfg.MSAA()),
		renderer.WithForceSoftwareRenderer(*software),
		renderer.WithPostSettings(cfg.PostSettings()),
		renderer.WithClearColor(cfg.ClearColor()),
	)

	// ── Camera, environment, scene ──────────────────────────────────────
	c := cfg.Camera
	cam := camera.NewCamera(
		camera.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
		camera.WithFov(c.Fov*math32.Pi/180),
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithClip(c.Near, c.Far),
	)
	env := environment.NewEnvironment(
		environment.WithResolution(cfg.Environment.Width, cfg.Environment.Height),
		environment.WithBlur(cfg.Environment.Blur),
		environment.WithRoughBlur(cfg.Environment.RoughBlur),
		environment.WithIntensity(cfg.Environment.Intensity),
	)
	s := scene.NewScene("coin", cam, r, env, scene.WithLights(cfg.LightRig()...))

	// ── Audio ───────────────────────────────────────────────────────────
	var player audio.Player
	if *withAudio || cfg.Audio.Enabled {
		player, err = audio.NewPlayer(
			audio.WithSampleRate(cfg.Audio.SampleRate),
			audio.WithFrequency(cfg.Audio.Frequency),
			audio.WithVolume(cfg.Audio.Volume),
		)
		if err != nil {
			// the scene works without sound
			log.Printf("[audio] disabled: %v", err)
		}
	}

	// ── Coin ────────────────────────────────────────────────────────────
	sequencerOptions := []coin.SequencerBuilderOption{
		coin.WithBounds(cfg.Bounds()),
		coin.WithCycleDelay(cfg.Animation.CycleDelay.Min, cfg.Animation.CycleDelay.Max),
		coin.WithCycleStartCallback(func(cycle int, p coin.CycleParams) {
			if *profile {
				log.Printf("[coin] cycle %d: %d flips around %s over %.2fs", cycle, p.Flips, p.Axis, p.FlipDuration)
			}
		}),
	}
	if *seed != 0 {
		sequencerOptions = append(sequencerOptions, coin.WithRand(rand.New(rand.NewPCG(*seed, *seed))))
	}
	if player != nil {
		sequencerOptions = append(sequencerOptions, coin.WithLandingCallback(func(int) { player.Chime() }))
	}

	pool := worker.NewDynamicWorkerPool(max(2, runtime.NumCPU()-1), 64, time.Second)
	assets := coin.Prepare(pool, env)

	// ── Config hot reload ───────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan *config.Config, 1)
	if *watch && *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				// only the latest config matters
				select {
				case <-reloads:
				default:
				}
				reloads <- next
			})
			if err != nil {
				log.Printf("[config] watch stopped: %v", err)
			}
		}()
	}

	var ctl coin.Controller
	update := func(deltaTime float32) error {
		select {
		case a := <-assets:
			if a.Err != nil {
				return a.Err
			}
			s.Add(a.Coin.Root)
			if err := s.Upload(); err != nil {
				return err
			}
			ctl = coin.NewController(a.Coin,
				coin.WithSequencerOptions(sequencerOptions...),
				coin.WithSpinnerOptions(coin.WithIncrements(cfg.Animation.Spin.Y, cfg.Animation.Spin.X)),
			)
			ctl.Mount()
		case next := <-reloads:
			if err := apply(s, next); err != nil {
				log.Printf("[config] not applied: %v", err)
			}
		default:
		}
		if ctl != nil {
			ctl.Update(deltaTime)
		}
		return nil
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithProfiling(*profile),
		engine.WithScene(sceneKey, s),
		engine.WithRenderFrameLimit(frameLimit),
		engine.WithUpdateCallback(update),
		engine.WithShutdownCallback(func() {
			cancel()
			if ctl != nil {
				ctl.Unmount()
			}
			if player != nil {
				player.Close()
			}
		}),
	)
	eng.Run()
}

// apply pushes the look of a reloaded config to the running scene. Window, camera, environment
// and animation settings take effect on the next start.
func apply(s scene.Scene, cfg *config.Config) error {
	if err := s.Renderer().SetPostSettings(cfg.PostSettings()); err != nil {
		return err
	}
	if err := s.SetLights(cfg.LightRig()...); err != nil {
		return err
	}
	s.Renderer().SetClearColor(cfg.ClearColor())
	return nil
}
