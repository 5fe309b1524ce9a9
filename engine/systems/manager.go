package systems

import (
	"github.com/spaghettifunk/anima-skeletal/engine/core"
)

type SystemManager struct {
	animationSystem *AnimationSystem
	jobSystem       *JobSystem
}

func NewSystemManager(animationConfig *AnimationSystemConfig, jobWorkers int, loader DocumentLoader, metrics *core.Metrics, events *core.EventSystem) (*SystemManager, error) {
	js, err := NewJobSystem(jobWorkers, jobWorkers*4)
	if err != nil {
		return nil, err
	}
	as, err := NewAnimationSystem(animationConfig, loader, metrics, events)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		animationSystem: as,
		jobSystem:       js,
	}, nil
}

func (sm *SystemManager) AnimationSystem() *AnimationSystem {
	return sm.animationSystem
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.animationSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
