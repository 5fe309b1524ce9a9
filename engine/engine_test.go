package engine

import (
	stdmath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/systems"
)

const testClip = `{
	"name": "slide",
	"frames_per_second": 2,
	"duration_seconds": 1.0,
	"children": [
		{
			"name": "root",
			"scale": {"time": [0], "value": [[1, 1, 1]]},
			"rotation": {"time": [0, 0.5], "value": [[0, 0, 0, 1], [0, 0, 0, 1]]},
			"translation": {"time": [0, 0.5, 1.0], "value": [[0, 0, 0], [10, 0, 0], [0, 0, 0]]}
		}
	]
}`

const testSkeleton = `
name = "single"

[[joints]]
name = "root"
parent = -1
`

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for path, body := range map[string]string{
		"animations/slide.animation": testClip,
		"skeletons/single.skeleton":  testSkeleton,
	} {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(t *testing.T, workers int) *ApplicationConfig {
	config := DefaultApplicationConfig()
	config.AssetBasePath = writeAssets(t)
	config.SimulationHz = 10
	config.TargetFrameRate = 0
	config.JobWorkers = workers
	config.Metrics.Enabled = true
	return config
}

type recordingGame struct {
	*Game
	handles []systems.InstanceHandle
	packets []RenderPacket
}

func newRecordingGame(config *ApplicationConfig, instances int) *recordingGame {
	rg := &recordingGame{Game: &Game{ApplicationConfig: config}}
	rg.FnInitialize = func() error {
		skeleton, err := rg.AssetManager.LoadSkeleton("skeletons/single")
		if err != nil {
			return err
		}
		for i := 0; i < instances; i++ {
			h, err := rg.SystemManager.AnimationSystem().LoadSequence("animations/slide", skeleton)
			if err != nil {
				return err
			}
			rg.handles = append(rg.handles, h)
		}
		return nil
	}
	rg.FnRender = func(packet *RenderPacket, deltaTime float64) error {
		copied := *packet
		copied.Poses = append([]InstancePose(nil), packet.Poses...)
		rg.packets = append(rg.packets, copied)
		return nil
	}
	return rg
}

func startEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	e, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { e.Shutdown() })
	return e
}

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) < 1e-4
}

func TestEngine_StepBlendsBetweenTicks(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 1)
	e := startEngine(t, rg.Game)

	// half a tick: no simulation yet, the pose at time 0 is shown
	if err := e.Step(0.05); err != nil {
		t.Fatal(err)
	}
	last := rg.packets[len(rg.packets)-1]
	if len(last.Poses) != 1 || !near(last.Alpha, 0.5) {
		t.Fatalf("packet = %d poses, alpha %v", len(last.Poses), last.Alpha)
	}
	if last.Poses[0].Pose.Pos[0].X != 0 {
		t.Errorf("x before first tick = %v", last.Poses[0].Pose.Pos[0].X)
	}

	// one tick to t=0.1 (x=2), half way past it
	if err := e.Step(0.1); err != nil {
		t.Fatal(err)
	}
	last = rg.packets[len(rg.packets)-1]
	if !near(last.Alpha, 0.5) {
		t.Errorf("alpha = %v, want 0.5", last.Alpha)
	}
	if x := last.Poses[0].Pose.Pos[0].X; !near(x, 1) {
		t.Errorf("blended x = %v, want 1", x)
	}

	instance, err := rg.SystemManager.AnimationSystem().GetInstance(rg.handles[0])
	if err != nil {
		t.Fatal(err)
	}
	if !near(instance.LocalTime(), 0.1) {
		t.Errorf("local time = %v, want 0.1", instance.LocalTime())
	}

	expected := `
# HELP anima_animation_simulation_ticks_total Number of fixed simulation ticks run.
# TYPE anima_animation_simulation_ticks_total counter
anima_animation_simulation_ticks_total 1
`
	if err := testutil.GatherAndCompare(e.Metrics().Registry(), strings.NewReader(expected), "anima_animation_simulation_ticks_total"); err != nil {
		t.Error(err)
	}
}

func TestEngine_ParallelPoseCapture(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 4), 6)
	e := startEngine(t, rg.Game)

	// stagger the instances so each has its own pose
	as := rg.SystemManager.AnimationSystem()
	for i, h := range rg.handles {
		instance, _ := as.GetInstance(h)
		instance.Advance(float32(i) * 0.05)
	}

	for i := 0; i < 5; i++ {
		if err := e.Step(0.1); err != nil {
			t.Fatal(err)
		}
	}

	last := rg.packets[len(rg.packets)-1]
	if len(last.Poses) != len(rg.handles) {
		t.Fatalf("poses = %d, want %d", len(last.Poses), len(rg.handles))
	}
	for i, ip := range last.Poses {
		// alpha is ~0 right after a tick, so the blend sits on the last tick
		instance, _ := as.GetInstance(ip.Handle)
		want := instanceX(instance.LocalTime()) // evaluated independently
		prevWant := instanceX(instance.LocalTime() - 0.1)
		if !near(ip.Pose.Pos[0].X, want) && !near(ip.Pose.Pos[0].X, prevWant) {
			t.Errorf("instance %d x = %v, want %v (or previous tick %v)", i, ip.Pose.Pos[0].X, want, prevWant)
		}
	}
}

// instanceX is the translation x of the test clip at t, for t in [0, 1).
func instanceX(t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t < 0.5 {
		return 10 * t / 0.5
	}
	return 10 * (1 - (t-0.5)/0.5)
}

func TestEngine_DestroyedInstanceLeavesPacket(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 2)
	e := startEngine(t, rg.Game)

	if err := e.Step(0.1); err != nil {
		t.Fatal(err)
	}
	if err := rg.SystemManager.AnimationSystem().DestroyInstance(rg.handles[0]); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.poses[rg.handles[0]]; ok {
		t.Errorf("pose pair kept for destroyed instance")
	}
	if err := e.Step(0.1); err != nil {
		t.Fatal(err)
	}
	last := rg.packets[len(rg.packets)-1]
	if len(last.Poses) != 1 || last.Poses[0].Handle != rg.handles[1] {
		t.Errorf("packet poses = %+v", last.Poses)
	}
}

func TestEngine_DisabledInstanceHoldsPose(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 1)
	e := startEngine(t, rg.Game)

	instance, _ := rg.SystemManager.AnimationSystem().GetInstance(rg.handles[0])
	if err := e.Step(0.2); err != nil {
		t.Fatal(err)
	}
	instance.Enabled = false
	if err := e.Step(0.1); err != nil {
		t.Fatal(err)
	}
	// a disabled instance shows its newest tick, unblended
	held := rg.packets[len(rg.packets)-1].Poses[0].Pose.Pos[0]
	if !near(held.X, 4) {
		t.Errorf("held x = %v, want 4", held.X)
	}
	for i := 0; i < 3; i++ {
		if err := e.Step(0.1); err != nil {
			t.Fatal(err)
		}
	}
	if got := rg.packets[len(rg.packets)-1].Poses[0].Pose.Pos[0]; got != held {
		t.Errorf("disabled instance moved from %+v to %+v", held, got)
	}
	if !near(instance.LocalTime(), 0.2) {
		t.Errorf("disabled instance time = %v", instance.LocalTime())
	}
}

func TestEngine_LongFrameIsCapped(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 1)
	e := startEngine(t, rg.Game)

	if err := e.Step(5); err != nil {
		t.Fatal(err)
	}
	if e.accumulator >= e.tickSeconds {
		t.Errorf("accumulator %v not drained", e.accumulator)
	}
	instance, _ := rg.SystemManager.AnimationSystem().GetInstance(rg.handles[0])
	// eight ticks of 0.1s
	if !near(instance.LocalTime(), 0.8) {
		t.Errorf("local time = %v, want 0.8", instance.LocalTime())
	}
}

func TestEngine_RunStopsOnMaxFrames(t *testing.T) {
	config := testConfig(t, 1)
	config.MaxFrames = 3
	rg := newRecordingGame(config, 1)
	e := startEngine(t, rg.Game)

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.FrameCount() != 3 || len(rg.packets) != 3 {
		t.Errorf("frames = %d, packets = %d", e.FrameCount(), len(rg.packets))
	}
}

func TestEngine_QuitEventStopsRun(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 1)
	render := rg.FnRender
	rg.FnRender = func(packet *RenderPacket, deltaTime float64) error {
		if err := render(packet, deltaTime); err != nil {
			return err
		}
		if len(rg.packets) == 2 {
			rg.Events.Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
		}
		return nil
	}
	e := startEngine(t, rg.Game)

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.FrameCount() != 2 {
		t.Errorf("frames = %d, want 2", e.FrameCount())
	}
}

func TestEngine_StageOrder(t *testing.T) {
	rg := newRecordingGame(testConfig(t, 1), 0)
	e, err := New(rg.Game)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	if e.Stage() != EngineStageBootComplete {
		t.Errorf("stage after New = %d", e.Stage())
	}
	if err := e.Run(); err == nil {
		t.Errorf("Run before Initialize should fail")
	}
}

func TestEngine_InitializeFailsOnMissingClip(t *testing.T) {
	g := &Game{ApplicationConfig: testConfig(t, 1)}
	g.FnInitialize = func() error {
		skeleton, err := g.AssetManager.LoadSkeleton("skeletons/single")
		if err != nil {
			return err
		}
		_, err = g.SystemManager.AnimationSystem().LoadSequence("animations/missing", skeleton)
		return err
	}
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err == nil {
		t.Errorf("expected Initialize to fail")
	}
}
