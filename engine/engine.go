package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spaghettifunk/anima-skeletal/engine/animation"
	"github.com/spaghettifunk/anima-skeletal/engine/assets"
	"github.com/spaghettifunk/anima-skeletal/engine/containers"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/math"
	"github.com/spaghettifunk/anima-skeletal/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// A frame longer than this many ticks drops the excess simulation time
// instead of trying to catch up.
const maxTicksPerFrame = 8

// posePair holds the poses of an instance at the last two simulation ticks.
type posePair struct {
	last    animation.Pose
	current animation.Pose
	primed  bool
}

func (pp *posePair) capture(instance *animation.AnimatedInstance) {
	if pp.primed {
		pp.last = pp.current
	}
	animation.GetPose(instance, &pp.current)
	if !pp.primed {
		pp.last = pp.current
		pp.primed = true
	}
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     atomic.Bool
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	events        *core.EventSystem
	metrics       *core.Metrics
	metricsServer *http.Server
	clock         *core.Clock
	lastTime      float64

	tickSeconds float64
	accumulator float64
	frameCount  uint64
	poses       map[systems.InstanceHandle]*posePair
	packet      RenderPacket
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	level, _ := core.ParseLogLevel(config.LogLevel)
	core.SetLogLevel(level)

	events := core.NewEventSystem()
	metrics := core.NewMetrics(&config.Metrics, prometheus.NewRegistry())

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	sm, err := systems.NewSystemManager(&config.Animation, config.JobWorkers, am, metrics, events)
	if err != nil {
		core.LogError(err.Error())
		am.Shutdown()
		return nil, err
	}

	g.SystemManager = sm
	g.AssetManager = am
	g.Events = events
	g.Metrics = metrics

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		assetManager:  am,
		systemManager: sm,
		events:        events,
		metrics:       metrics,
		clock:         core.NewClock(),
		tickSeconds:   1.0 / config.SimulationHz,
		poses:         make(map[systems.InstanceHandle]*posePair),
	}
	e.isRunning.Store(true)

	e.currentStage = EngineStageBooting
	if g.FnBoot != nil {
		if err := g.FnBoot(); err != nil {
			core.LogError("game boot failed: %s", err)
			e.shutdownSystems()
			return nil, err
		}
	}
	e.currentStage = EngineStageBootComplete

	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot be initialized from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_INSTANCE_DESTROYED, e, e.onEvent)

	// initialize subsystems
	if err := e.assetManager.Initialize(e.config.AssetBasePath); err != nil {
		return err
	}
	if e.config.ResourcePack != "" {
		if err := e.assetManager.MountPack(e.config.ResourcePack); err != nil {
			return err
		}
	}

	if e.config.Metrics.Enabled && e.config.Metrics.ListenAddress != "" {
		e.startMetricsServer()
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (simulation %.0f Hz, %d job workers)", e.config.Name, e.config.SimulationHz, e.config.JobWorkers)
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if e.config.TargetFrameRate > 0 {
		targetFrameSeconds = 1.0 / e.config.TargetFrameRate
	}

	for e.isRunning.Load() {
		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.Step(delta); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		if e.config.MaxFrames > 0 && e.frameCount >= e.config.MaxFrames {
			core.LogInfo("reached max_frames (%d), stopping", e.config.MaxFrames)
			e.isRunning.Store(false)
		}

		// Figure out how long the frame took and, if below the target, give
		// the rest back to the OS.
		if targetFrameSeconds > 0 {
			remaining := targetFrameSeconds - time.Since(frameStart).Seconds()
			if remaining > 0 {
				time.Sleep(time.Duration(remaining * float64(time.Second)))
			}
		}

		// Update last time
		e.lastTime = currentTime
	}

	return nil
}

// Step runs one frame: the game update, as many fixed simulation ticks as
// deltaTime covers, and the render callback with poses blended between the
// last two ticks.
func (e *Engine) Step(deltaTime float64) error {
	if deltaTime < 0 {
		deltaTime = 0
	}

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(deltaTime); err != nil {
			return fmt.Errorf("game update failed: %w", err)
		}
	}

	e.accumulator += deltaTime
	if limit := maxTicksPerFrame * e.tickSeconds; e.accumulator > limit {
		core.LogWarn("frame took %.3fs, dropping %.3fs of simulation", deltaTime, e.accumulator-limit)
		e.accumulator = limit
	}

	animationSystem := e.systemManager.AnimationSystem()
	for e.accumulator >= e.tickSeconds {
		animationSystem.Update(float32(e.tickSeconds))
		e.capturePoses()
		e.metrics.RecordSimulationTick()
		e.accumulator -= e.tickSeconds
	}

	alpha := math.Clamp(float32(e.accumulator/e.tickSeconds), 0, 1)
	e.buildPacket(deltaTime, alpha)

	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(&e.packet, deltaTime); err != nil {
			return fmt.Errorf("game render failed: %w", err)
		}
	}

	e.metrics.Update(deltaTime)
	e.frameCount++
	return nil
}

// capturePoses shifts the current pose of every enabled instance into last
// and evaluates a new current one. With more than one job worker the
// instances are evaluated in parallel; each task writes only its own pair
// and sequences are read-only.
func (e *Engine) capturePoses() {
	type job struct {
		pair     *posePair
		instance *animation.AnimatedInstance
	}
	var jobs []job
	e.systemManager.AnimationSystem().EachInstance(func(h systems.InstanceHandle, instance *animation.AnimatedInstance) {
		if !instance.Enabled {
			return
		}
		jobs = append(jobs, job{pair: e.posesFor(h), instance: instance})
	})

	js := e.systemManager.JobSystem()
	if js.Workers() <= 1 || len(jobs) <= 1 {
		for _, j := range jobs {
			j.pair.capture(j.instance)
		}
		return
	}

	tasks := make([]systems.JobTask, len(jobs))
	for i, j := range jobs {
		j := j
		tasks[i] = systems.JobTask{
			OnStart: func() error {
				j.pair.capture(j.instance)
				return nil
			},
		}
	}
	js.RunAll(tasks)
}

func (e *Engine) posesFor(h systems.InstanceHandle) *posePair {
	pair, ok := e.poses[h]
	if !ok {
		pair = &posePair{}
		e.poses[h] = pair
	}
	return pair
}

func (e *Engine) buildPacket(deltaTime float64, alpha float32) {
	e.packet.DeltaTime = deltaTime
	e.packet.Alpha = alpha
	e.packet.Poses = e.packet.Poses[:0]

	e.systemManager.AnimationSystem().EachInstance(func(h systems.InstanceHandle, instance *animation.AnimatedInstance) {
		pair := e.posesFor(h)
		if !pair.primed {
			// created since the last tick
			pair.capture(instance)
		}
		e.packet.Poses = append(e.packet.Poses, InstancePose{Handle: h, Name: instance.Name})
		out := &e.packet.Poses[len(e.packet.Poses)-1].Pose
		if instance.Enabled {
			animation.InterpolatePose(out, &pair.last, &pair.current, alpha)
		} else {
			*out = pair.current
		}
	})
}

// Quit asks the run loop to stop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if e.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.metricsServer.Shutdown(ctx); err != nil {
			core.LogWarn("metrics server shutdown: %s", err)
		}
	}
	return e.shutdownSystems()
}

func (e *Engine) shutdownSystems() error {
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	return e.events.Shutdown()
}

func (e *Engine) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.metrics.Registry(), promhttp.HandlerOpts{}))
	e.metricsServer = &http.Server{
		Addr:              e.config.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		core.LogInfo("serving metrics on %s/metrics", e.config.Metrics.ListenAddress)
		if err := e.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogError("metrics server: %s", err)
		}
	}()
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
	case core.EVENT_CODE_INSTANCE_DESTROYED:
		if h, ok := data.Handle.(containers.Handle); ok {
			delete(e.poses, h)
		}
	}
	return false
}
