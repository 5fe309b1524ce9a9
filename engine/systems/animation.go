package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-skeletal/engine/animation"
	"github.com/spaghettifunk/anima-skeletal/engine/containers"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

type (
	SequenceHandle = containers.Handle
	InstanceHandle = containers.Handle
)

/** @brief The animation system configuration. */
type AnimationSystemConfig struct {
	/** @brief The maximum number of sequences that can be registered. */
	MaxSequenceCount uint32 `toml:"max_sequence_count"`
	/** @brief The maximum number of live animated instances. */
	MaxInstanceCount uint32 `toml:"max_instance_count"`
}

// DocumentLoader parses a named clip document and calls onLoad with it. A
// load failure is returned without calling onLoad; an error from onLoad is
// returned as is.
type DocumentLoader interface {
	LoadAnimation(name string, onLoad func(doc *resources.AnimationDocument) error) error
}

// AnimationSystem owns every registered Sequence and every AnimatedInstance.
// Sequences are loaded once per name and live until Shutdown; instances are
// created and destroyed explicitly. Handles are generational, so a handle
// kept past DestroyInstance fails the lookup instead of aliasing a new
// instance. The system is not safe for concurrent use.
type AnimationSystem struct {
	Config *AnimationSystemConfig

	loader  DocumentLoader
	metrics *core.Metrics
	events  *core.EventSystem

	sequences *containers.Freelist[*animation.Sequence]
	lookup    map[string]SequenceHandle
	instances *containers.Freelist[*animation.AnimatedInstance]
}

/**
 * @brief Creates the animation system.
 *
 * @param config The configuration for this system.
 * @param loader Resolves clip names to parsed documents.
 * @param metrics Optional metrics sink; may be nil.
 * @param events Optional event system notified on loads and instance changes; may be nil.
 */
func NewAnimationSystem(config *AnimationSystemConfig, loader DocumentLoader, metrics *core.Metrics, events *core.EventSystem) (*AnimationSystem, error) {
	if config.MaxSequenceCount == 0 {
		err := fmt.Errorf("func NewAnimationSystem - config.MaxSequenceCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxInstanceCount == 0 {
		err := fmt.Errorf("func NewAnimationSystem - config.MaxInstanceCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if loader == nil {
		err := fmt.Errorf("func NewAnimationSystem - a document loader is required")
		core.LogError(err.Error())
		return nil, err
	}
	return &AnimationSystem{
		Config:    config,
		loader:    loader,
		metrics:   metrics,
		events:    events,
		sequences: containers.NewFreelist[*animation.Sequence](int(config.MaxSequenceCount)),
		lookup:    make(map[string]SequenceHandle, config.MaxSequenceCount),
		instances: containers.NewFreelist[*animation.AnimatedInstance](int(config.MaxInstanceCount)),
	}, nil
}

/**
 * @brief Loads the named clip and binds it against skeleton. Loading a name
 * that is already registered returns the registered sequence without reading
 * the document again. On failure nothing is registered.
 */
func (as *AnimationSystem) LoadSequenceFromFile(name string, skeleton animation.Skeleton) (*animation.Sequence, error) {
	if h, ok := as.lookup[name]; ok {
		if seq, ok := as.sequences.Get(h); ok {
			return seq, nil
		}
	}

	var sequence *animation.Sequence
	err := as.loader.LoadAnimation(name, func(doc *resources.AnimationDocument) error {
		seq, err := animation.BuildSequence(name, doc, skeleton)
		if err != nil {
			return err
		}
		sequence = seq
		return nil
	})
	if err != nil {
		as.metrics.RecordSequenceLoad(false)
		core.LogWarn("failed to load animation sequence '%s': %s", name, err)
		return nil, fmt.Errorf("failed to load animation sequence %q: %w", name, err)
	}

	h, err := as.sequences.Acquire(sequence)
	if err != nil {
		as.metrics.RecordSequenceLoad(false)
		err = fmt.Errorf("%w: no free sequence slot for %q, max is %d", core.ErrCapacityExceeded, name, as.Config.MaxSequenceCount)
		core.LogError(err.Error())
		return nil, err
	}
	sequence.Handle = h
	as.lookup[name] = h

	as.metrics.RecordSequenceLoad(true)
	core.LogInfo("loaded animation sequence '%s' (%d joints, %.3fs)", name, sequence.JointCount, sequence.DurationSeconds)
	as.events.Fire(core.EVENT_CODE_SEQUENCE_LOADED, as, core.EventContext{Name: name, Handle: h})
	return sequence, nil
}

// LoadSequence loads (or reuses) the named sequence and creates one instance
// bound to it.
func (as *AnimationSystem) LoadSequence(name string, skeleton animation.Skeleton) (InstanceHandle, error) {
	sequence, err := as.LoadSequenceFromFile(name, skeleton)
	if err != nil {
		return containers.InvalidHandle, err
	}
	return as.CreateInstance(sequence.Handle)
}

// FindSequence looks a sequence up by name without loading it. It returns
// containers.InvalidHandle and false when no such sequence is registered.
func (as *AnimationSystem) FindSequence(name string) (SequenceHandle, bool) {
	h, ok := as.lookup[name]
	if !ok {
		return containers.InvalidHandle, false
	}
	return h, true
}

func (as *AnimationSystem) GetSequence(h SequenceHandle) (*animation.Sequence, error) {
	seq, ok := as.sequences.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: sequence %+v", core.ErrInvalidHandle, h)
	}
	return seq, nil
}

/**
 * @brief Creates an enabled instance bound to the given sequence, starting
 * at local time 0.
 *
 * @return The handle of the new instance.
 */
func (as *AnimationSystem) CreateInstance(sequenceHandle SequenceHandle) (InstanceHandle, error) {
	sequence, err := as.GetSequence(sequenceHandle)
	if err != nil {
		return containers.InvalidHandle, err
	}

	instance := animation.NewAnimatedInstance("")
	instance.Initialize(sequence)

	h, err := as.instances.Acquire(instance)
	if err != nil {
		err = fmt.Errorf("%w: no free instance slot for sequence %q, max is %d", core.ErrCapacityExceeded, sequence.Name, as.Config.MaxInstanceCount)
		core.LogError(err.Error())
		return containers.InvalidHandle, err
	}
	instance.Handle = h

	as.metrics.SetAnimatedInstances(as.instances.Len())
	core.LogDebug("created animated instance '%s' of '%s'", instance.Name, sequence.Name)
	as.events.Fire(core.EVENT_CODE_INSTANCE_CREATED, as, core.EventContext{Name: instance.Name, Handle: h})
	return h, nil
}

// DestroyInstance releases an instance. The handle and every copy of it
// become stale.
func (as *AnimationSystem) DestroyInstance(h InstanceHandle) error {
	instance, ok := as.instances.Get(h)
	if !ok {
		return fmt.Errorf("%w: instance %+v", core.ErrInvalidHandle, h)
	}
	as.instances.Release(h)
	instance.Channels = nil

	as.metrics.SetAnimatedInstances(as.instances.Len())
	core.LogDebug("destroyed animated instance '%s'", instance.Name)
	as.events.Fire(core.EVENT_CODE_INSTANCE_DESTROYED, as, core.EventContext{Name: instance.Name, Handle: h})
	return nil
}

func (as *AnimationSystem) GetInstance(h InstanceHandle) (*animation.AnimatedInstance, error) {
	instance, ok := as.instances.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: instance %+v", core.ErrInvalidHandle, h)
	}
	return instance, nil
}

// Update advances every enabled instance by deltaSeconds.
func (as *AnimationSystem) Update(deltaSeconds float32) {
	as.instances.Each(func(_ InstanceHandle, instance *animation.AnimatedInstance) {
		if instance.Enabled {
			instance.Advance(deltaSeconds)
		}
	})
}

// GetPose evaluates the instance at its current local time into pose.
func (as *AnimationSystem) GetPose(h InstanceHandle, pose *animation.Pose) error {
	instance, err := as.GetInstance(h)
	if err != nil {
		return err
	}
	animation.GetPose(instance, pose)
	return nil
}

// EachInstance visits every live instance in slot order.
func (as *AnimationSystem) EachInstance(fn func(h InstanceHandle, instance *animation.AnimatedInstance)) {
	as.instances.Each(fn)
}

func (as *AnimationSystem) SequenceCount() int {
	return as.sequences.Len()
}

func (as *AnimationSystem) InstanceCount() int {
	return as.instances.Len()
}

/**
 * @brief Destroys every instance, then every sequence. All outstanding
 * handles become stale.
 */
func (as *AnimationSystem) Shutdown() error {
	as.instances.Each(func(_ InstanceHandle, instance *animation.AnimatedInstance) {
		instance.Channels = nil
	})
	as.instances.Clear()

	as.sequences.Each(func(_ SequenceHandle, sequence *animation.Sequence) {
		sequence.Deallocate()
	})
	as.sequences.Clear()
	as.lookup = make(map[string]SequenceHandle)

	as.metrics.SetAnimatedInstances(0)
	core.LogInfo("animation system shut down")
	return nil
}
