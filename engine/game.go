package engine

import (
	"github.com/spaghettifunk/anima-skeletal/engine/animation"
	"github.com/spaghettifunk/anima-skeletal/engine/assets"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnBoot is called.
	SystemManager *systems.SystemManager
	AssetManager  *assets.AssetManager
	Events        *core.EventSystem
	Metrics       *core.Metrics
	State         interface{}
	FnBoot        Boot
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnShutdown    Shutdown
}

// InstancePose is the blended pose of one animated instance for a frame.
type InstancePose struct {
	Handle systems.InstanceHandle
	Name   string
	Pose   animation.Pose
}

// RenderPacket is handed to the game once per rendered frame. Alpha is how
// far the frame sits between the last two simulation ticks.
type RenderPacket struct {
	DeltaTime float64
	Alpha     float32
	Poses     []InstancePose
}

type Boot func() error
type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *RenderPacket, deltaTime float64) error
type Shutdown func() error
