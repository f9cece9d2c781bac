package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has released everything it owned
	EngineStageShutdown
)

type Option func(*Engine)

// WithConfigWatch reloads the config file at path while running. Only the
// log level and the target frame rate are applied live.
func WithConfigWatch(path string) Option {
	return func(e *Engine) {
		e.configPath = path
	}
}

// WithCommandBackend executes submitted frames on b instead of the renderer
// backend, for example a vulkan.CommandRecorder over a device the caller
// created. The renderer backend still allocates device objects, so b must
// resolve the handles it hands out.
func WithCommandBackend(b commands.Backend) Option {
	return func(e *Engine) {
		e.commandBackend = b
	}
}

type Engine struct {
	currentStage   Stage
	gameInstance   *Game
	config         *core.EngineConfig
	configPath     string
	watcher        *core.ConfigWatcher
	backend        renderer.RendererBackend
	commandBackend commands.Backend
	scheduler      *commands.Scheduler
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameNumber   uint64
}

func New(g *Game, cfg *core.EngineConfig, backend renderer.RendererBackend, opts ...Option) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine requires a game with an application config")
	}
	if g.FnUpdate == nil {
		return nil, fmt.Errorf("game '%s' has no update function", g.ApplicationConfig.Name)
	}
	if backend == nil {
		return nil, fmt.Errorf("engine requires a renderer backend")
	}
	if cfg == nil {
		cfg = core.DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(cfg.Level())

	sm, err := systems.NewSystemManager(cfg.Systems, backend, g.ApplicationConfig.TextureLoader)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e := &Engine{
		currentStage:   EngineStageUninitialized,
		gameInstance:   g,
		config:         cfg,
		backend:        backend,
		commandBackend: backend,
		systemManager:  sm,
		width:          g.ApplicationConfig.StartWidth,
		height:         g.ApplicationConfig.StartHeight,
		clock:          core.NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	// Systems are not initialized yet; only the job workers are running.
	if e.commandBackend == nil {
		sm.JobSystem().Shutdown()
		return nil, fmt.Errorf("engine requires a command backend")
	}
	if e.scheduler, err = commands.NewScheduler(e.commandBackend); err != nil {
		sm.JobSystem().Shutdown()
		return nil, err
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing
	app := e.gameInstance.ApplicationConfig

	if err := core.MetricsInitialize(); err != nil {
		return err
	}
	if err := e.backend.Initialize(app.Name); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	if len(app.PreloadTextures) > 0 {
		ts := e.systemManager.TextureSystem()
		if err := ts.Preload(e.systemManager.JobSystem(), app.PreloadTextures); err != nil {
			core.LogWarn("some textures failed to preload: %s", err)
		}
	}

	views := app.RenderViewConfigs
	if len(views) == 0 {
		views = append(views, DefaultRenderViewConfig(e.width, e.height))
	}
	for _, view := range views {
		if view.Width == 0 || view.Height == 0 {
			view.Width, view.Height = e.width, e.height
		}
		if err := e.systemManager.RenderViewSystem().Create(view); err != nil {
			core.LogError("failed to create render view '%s': %s", view.Name, err)
			return err
		}
	}

	if e.configPath != "" {
		w, err := core.NewConfigWatcher(e.configPath)
		if err != nil {
			core.LogWarn("config hot reload disabled: %s", err)
		} else {
			e.watcher = w
		}
	}

	e.gameInstance.SystemManager = e.systemManager
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized for '%s'", app.Name)
	return nil
}

// Run drives the frame loop until the configured number of frames has been
// drawn, ctx is cancelled or the game fails. Aborted frames are skipped.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.ElapsedSeconds()

	var updates <-chan *core.EngineConfig
	if e.watcher != nil {
		updates = e.watcher.Updates()
	}

	for frames := uint64(0); e.config.Frames == 0 || frames < e.config.Frames; frames++ {
		select {
		case <-ctx.Done():
			core.LogInfo("engine stopped: %s", context.Cause(ctx))
			return nil
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				break
			}
			e.applyConfig(cfg)
		default:
		}

		frameStart := time.Now()
		e.clock.Update()
		currentTime := e.clock.ElapsedSeconds()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down.")
			return fmt.Errorf("game update: %w", err)
		}
		e.frameNumber++
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(e.frameNumber, delta); err != nil {
				core.LogError("Game render failed, shutting down.")
				return fmt.Errorf("game render: %w", err)
			}
		}

		if _, err := e.systemManager.DrawFrame(e.scheduler); err != nil && !errors.Is(err, core.ErrFrameAborted) {
			return fmt.Errorf("draw frame %d: %w", e.frameNumber, err)
		}

		// Figure out how long the frame took and give the rest back.
		frameElapsed := time.Since(frameStart)
		core.MetricsUpdate(frameElapsed.Seconds())
		if target := e.targetFrameTime(); frameElapsed < target {
			timer := time.NewTimer(target - frameElapsed)
			select {
			case <-ctx.Done():
				timer.Stop()
				core.LogInfo("engine stopped: %s", context.Cause(ctx))
				return nil
			case <-timer.C:
			}
		}
		e.lastTime = currentTime
	}
	fps, frameMS := core.MetricsFrame()
	core.LogInfo("engine ran %d frames (%.1f fps, %.3f ms/frame)", e.frameNumber, fps, frameMS)
	return nil
}

func (e *Engine) targetFrameTime() time.Duration {
	if e.config.TargetFPS == 0 {
		return 0
	}
	return time.Second / time.Duration(e.config.TargetFPS)
}

// applyConfig takes the live settings from a reloaded config. Capacity
// changes need a restart.
func (e *Engine) applyConfig(cfg *core.EngineConfig) {
	if cfg.LogLevel != e.config.LogLevel {
		core.SetLogLevel(cfg.Level())
		core.LogInfo("log level set to %s", cfg.Level())
	}
	if cfg.Systems != e.config.Systems {
		core.LogWarn("system capacities changed in config; restart to apply them")
	}
	e.config.LogLevel = cfg.LogLevel
	e.config.TargetFPS = cfg.TargetFPS
}

// OnResize resizes every render view and notifies the game.
func (e *Engine) OnResize(width, height uint32) error {
	if err := e.systemManager.RenderViewSystem().OnResize(width, height); err != nil {
		return err
	}
	e.width, e.height = width, height
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	errs = append(errs, e.systemManager.Shutdown(), e.backend.Shutdown())
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the render targets.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Scheduler() *commands.Scheduler {
	return e.scheduler
}
