package testbed

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-skeletal/engine"
)

// Config is the application config plus the scene the testbed plays.
type Config struct {
	engine.ApplicationConfig
	Scene SceneConfig `toml:"scene"`
}

type SceneConfig struct {
	// Skeleton every clip is bound against.
	Skeleton string       `toml:"skeleton"`
	Clips    []ClipConfig `toml:"clips"`
}

type ClipConfig struct {
	Name string `toml:"name"`
	// Number of instances playing the clip.
	Copies int `toml:"copies"`
	// Start offset between consecutive copies.
	StaggerSeconds float32 `toml:"stagger_seconds"`
}

func DefaultConfig() *Config {
	return &Config{
		ApplicationConfig: *engine.DefaultApplicationConfig(),
		Scene: SceneConfig{
			Skeleton: "skeletons/arm",
			Clips:    []ClipConfig{{Name: "animations/wave", Copies: 1}},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse testbed config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid testbed config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := c.ApplicationConfig.Validate(); err != nil {
		return err
	}
	if c.Scene.Skeleton == "" {
		return fmt.Errorf("scene.skeleton is required")
	}
	for _, clip := range c.Scene.Clips {
		if clip.Name == "" {
			return fmt.Errorf("scene clip without a name")
		}
		if clip.Copies < 0 {
			return fmt.Errorf("scene clip %s: copies must be >= 0, got %d", clip.Name, clip.Copies)
		}
	}
	return nil
}
