package animation

import (
	"fmt"
	stdmath "math"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-skeletal/engine/containers"
)

// AnimatedInstance is the playback state of one character bound to a
// Sequence. Many instances may share a Sequence; each owns its channels.
type AnimatedInstance struct {
	Name             string
	Handle           containers.Handle
	SequenceHandle   containers.Handle
	LocalTimeSeconds float32
	// Enabled gates whether the owning system advances the instance.
	Enabled  bool
	Channels []Channel

	bound             bool
	durationSeconds   float32
	frameDelaySeconds float32
}

// NewAnimatedInstance returns an idle, unbound instance. An empty name is
// replaced by a random one.
func NewAnimatedInstance(name string) *AnimatedInstance {
	if name == "" {
		name = uuid.New().String()
	}
	return &AnimatedInstance{Name: name}
}

// Initialize binds every channel to the matching keyframe list of sequence
// and enables playback. It must be called once before Advance or GetPose.
func (ai *AnimatedInstance) Initialize(sequence *Sequence) {
	ai.SequenceHandle = sequence.Handle
	ai.durationSeconds = sequence.DurationSeconds
	ai.frameDelaySeconds = sequence.FrameDelaySeconds

	ai.Channels = make([]Channel, sequence.ChannelCount())
	for index := range ai.Channels {
		ai.Channels[index].SetKeyframeList(&sequence.Channels[index], sequence.FrameDelaySeconds)
	}
	ai.LocalTimeSeconds = 0
	ai.Enabled = true
	ai.bound = true
}

// IsBound reports whether Initialize has been called.
func (ai *AnimatedInstance) IsBound() bool {
	return ai.bound
}

// JointCount returns the number of joints the bound channels animate.
func (ai *AnimatedInstance) JointCount() int {
	return len(ai.Channels) / ChannelsPerJoint
}

// Advance moves the local clock by deltaSeconds and wraps it into
// [0, duration). Deltas longer than the clip wrap as many times as needed
// and negative deltas rewind. Zero-length clips stay at 0.
func (ai *AnimatedInstance) Advance(deltaSeconds float32) {
	if !ai.bound {
		panic(fmt.Sprintf("animation: Advance on unbound instance %q", ai.Name))
	}
	duration := ai.durationSeconds
	if duration <= 0 {
		ai.LocalTimeSeconds = 0
		return
	}

	t := ai.LocalTimeSeconds + deltaSeconds
	if t >= duration || t < 0 {
		t = float32(stdmath.Mod(float64(t), float64(duration)))
		if t < 0 {
			t += duration
		}
		// rounding in the negative branch can land exactly on duration
		if t >= duration {
			t = 0
		}
	}
	ai.LocalTimeSeconds = t
}

// ResetChannels rewinds the local clock to the start of the clip.
func (ai *AnimatedInstance) ResetChannels() {
	ai.LocalTimeSeconds = 0
}

func (ai *AnimatedInstance) LocalTime() float32 {
	return ai.LocalTimeSeconds
}

func (ai *AnimatedInstance) DurationSeconds() float32 {
	return ai.durationSeconds
}

func (ai *AnimatedInstance) FrameDelaySeconds() float32 {
	return ai.frameDelaySeconds
}
