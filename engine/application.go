package engine

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/systems"
)

type ApplicationConfig struct {
	// The application name, used in logs.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Directory holding the .animation and .skeleton files.
	AssetBasePath string `toml:"asset_base_path"`
	// Optional resource pack built by animpack, consulted for names missing on disk.
	ResourcePack string `toml:"resource_pack"`
	// Fixed simulation rate in ticks per second.
	SimulationHz float64 `toml:"simulation_hz"`
	// Frame limiter; 0 runs unthrottled.
	TargetFrameRate float64 `toml:"target_frame_rate"`
	// Stop after this many frames; 0 runs until quit.
	MaxFrames uint64 `toml:"max_frames"`
	// Workers used to extract poses after each tick; 1 extracts inline.
	JobWorkers int                           `toml:"job_workers"`
	Animation  systems.AnimationSystemConfig `toml:"animation"`
	Metrics    core.MetricsConfig            `toml:"metrics"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:            "Anima Skeletal",
		LogLevel:        "info",
		AssetBasePath:   "assets",
		SimulationHz:    30,
		TargetFrameRate: 60,
		JobWorkers:      1,
		Animation: systems.AnimationSystemConfig{
			MaxSequenceCount: 64,
			MaxInstanceCount: 256,
		},
		Metrics: core.MetricsConfig{
			Namespace: "anima",
			Subsystem: "animation",
		},
	}
}

// LoadApplicationConfig reads a TOML file on top of DefaultApplicationConfig.
// Unknown keys are rejected.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse application config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid application config %s: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.SimulationHz <= 0 {
		return fmt.Errorf("simulation_hz must be > 0, got %v", c.SimulationHz)
	}
	if c.TargetFrameRate < 0 {
		return fmt.Errorf("target_frame_rate must be >= 0, got %v", c.TargetFrameRate)
	}
	if c.JobWorkers <= 0 {
		return fmt.Errorf("job_workers must be > 0, got %d", c.JobWorkers)
	}
	if c.Animation.MaxSequenceCount == 0 || c.Animation.MaxInstanceCount == 0 {
		return fmt.Errorf("animation.max_sequence_count and animation.max_instance_count must be > 0")
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
