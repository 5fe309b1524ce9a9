package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima-skeletal/engine"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/systems"
)

// How often the render callback reports what it is drawing.
const reportIntervalSeconds = 1.0

type TestGame struct {
	*engine.Game
	scene SceneConfig
}

type gameState struct {
	instances []systems.InstanceHandle

	elapsed       float64
	sinceReport   float64
	framesDrawn   uint64
	lastPoseCount int
}

func NewTestGame(config *Config) *TestGame {
	if config == nil {
		config = DefaultConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &config.ApplicationConfig,
			State:             &gameState{},
		},
		scene: config.Scene,
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	if g.SystemManager == nil || g.AssetManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	return nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.instances = state.instances[:0]

	skeleton, err := g.AssetManager.LoadSkeleton(g.scene.Skeleton)
	if err != nil {
		core.LogError("failed to load skeleton %s", g.scene.Skeleton)
		return err
	}

	as := g.SystemManager.AnimationSystem()
	for _, clip := range g.scene.Clips {
		copies := clip.Copies
		if copies == 0 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			h, err := as.LoadSequence(clip.Name, skeleton)
			if err != nil {
				core.LogError("failed to load clip %s", clip.Name)
				return err
			}
			instance, err := as.GetInstance(h)
			if err != nil {
				return err
			}
			instance.Name = fmt.Sprintf("%s#%d", clip.Name, i)
			// spread the copies out so they do not move in lockstep
			instance.Advance(clip.StaggerSeconds * float32(i))
			state.instances = append(state.instances, h)
		}
	}

	core.LogInfo("testbed scene ready: %d instances on %d sequences", as.InstanceCount(), as.SequenceCount())
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	return nil
}

func (g *TestGame) Render(packet *engine.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	state.framesDrawn++
	state.lastPoseCount = len(packet.Poses)

	state.sinceReport += deltaTime
	if state.sinceReport < reportIntervalSeconds {
		return nil
	}
	state.sinceReport = 0

	core.LogInfo("frame %d: %d poses, %.1f fps (%.2f ms), alpha %.2f",
		state.framesDrawn, len(packet.Poses), g.Metrics.FPS(), g.Metrics.FrameTime(), packet.Alpha)
	for _, ip := range packet.Poses {
		if ip.Pose.JointCount == 0 {
			continue
		}
		p, r := ip.Pose.Pos[0], ip.Pose.Rot[0]
		core.LogDebug("  %s root pos=(%.3f, %.3f, %.3f) rot=(%.3f, %.3f, %.3f, %.3f)",
			ip.Name, p.X, p.Y, p.Z, r.X, r.Y, r.Z, r.W)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	as := g.SystemManager.AnimationSystem()
	for _, h := range state.instances {
		if err := as.DestroyInstance(h); err != nil {
			core.LogWarn("instance already gone: %s", err)
		}
	}
	state.instances = nil
	core.LogInfo("testbed shut down after %.2fs", state.elapsed)
	return nil
}
