package testbed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-skeletal/engine"
)

func sampleConfig(t *testing.T) *Config {
	t.Helper()
	config, err := LoadConfig(filepath.Join("..", "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	config.AssetBasePath = filepath.Join("..", "assets")
	config.TargetFrameRate = 0
	config.Metrics.ListenAddress = ""
	return config
}

func TestLoadConfig_Sample(t *testing.T) {
	config := sampleConfig(t)
	if config.Scene.Skeleton != "skeletons/arm" || len(config.Scene.Clips) != 2 {
		t.Fatalf("scene = %+v", config.Scene)
	}
	wave := config.Scene.Clips[0]
	if wave.Name != "animations/wave" || wave.Copies != 3 || wave.StaggerSeconds != 0.2 {
		t.Errorf("wave clip = %+v", wave)
	}
	if config.JobWorkers != 2 || config.SimulationHz != 30 {
		t.Errorf("application config = %+v", config.ApplicationConfig)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown scene key": "[scene]\nskeleton = \"s\"\nlights = 2\n",
		"empty skeleton":    "[scene]\nskeleton = \"\"\n",
		"unnamed clip":      "[scene]\nskeleton = \"s\"\n[[scene.clips]]\ncopies = 1\n",
		"negative copies":   "[scene]\nskeleton = \"s\"\n[[scene.clips]]\nname = \"c\"\ncopies = -1\n",
		"bad engine value":  "simulation_hz = -5\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestTestGame_PlaysScene(t *testing.T) {
	config := sampleConfig(t)
	config.MaxFrames = 10

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Initialize(); err != nil {
		e.Shutdown()
		t.Fatalf("Initialize: %v", err)
	}

	as := tg.SystemManager.AnimationSystem()
	if as.InstanceCount() != 4 || as.SequenceCount() != 2 {
		t.Errorf("instances = %d, sequences = %d", as.InstanceCount(), as.SequenceCount())
	}
	state := tg.State.(*gameState)
	second, err := as.GetInstance(state.instances[1])
	if err != nil {
		t.Fatal(err)
	}
	if second.Name != "animations/wave#1" || second.LocalTime() == 0 {
		t.Errorf("staggered copy = %q at %v", second.Name, second.LocalTime())
	}

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.framesDrawn != 10 || state.lastPoseCount != 4 {
		t.Errorf("frames = %d, poses = %d", state.framesDrawn, state.lastPoseCount)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if as.InstanceCount() != 0 {
		t.Errorf("instances left after shutdown: %d", as.InstanceCount())
	}
}
