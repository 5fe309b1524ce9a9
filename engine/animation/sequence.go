package animation

import "github.com/spaghettifunk/anima-skeletal/engine/containers"

// ChannelsPerJoint is the number of scalar channels animated per joint:
// translation x, y, z followed by rotation x, y, z, w.
const ChannelsPerJoint = 7

const (
	ComponentTranslationX = iota
	ComponentTranslationY
	ComponentTranslationZ
	ComponentRotationX
	ComponentRotationY
	ComponentRotationZ
	ComponentRotationW
)

// MaxJoints bounds the number of joints a Pose can hold.
const MaxJoints = 64

// Sequence is an authored clip. It is read-only once built and shared by
// every AnimatedInstance bound to it.
type Sequence struct {
	Name string
	// Handle is the registry slot of the sequence; zero until registered.
	Handle            containers.Handle
	DurationSeconds   float32
	FrameDelaySeconds float32
	JointCount        int
	// Channels holds JointCount*ChannelsPerJoint lists, indexed
	// joint*ChannelsPerJoint + component.
	Channels []KeyframeList
}

// NewSequence allocates the keyframe lists for jointCount joints.
func NewSequence(name string, jointCount int) *Sequence {
	return &Sequence{
		Name:       name,
		JointCount: jointCount,
		Channels:   make([]KeyframeList, jointCount*ChannelsPerJoint),
	}
}

// KeyframeList returns the list for one component of one joint.
func (s *Sequence) KeyframeList(joint, component int) *KeyframeList {
	return &s.Channels[joint*ChannelsPerJoint+component]
}

// ChannelCount returns the number of keyframe lists the sequence owns.
func (s *Sequence) ChannelCount() int {
	return len(s.Channels)
}

// Deallocate releases every keyframe list.
func (s *Sequence) Deallocate() {
	for i := range s.Channels {
		s.Channels[i].Deallocate()
	}
	s.Channels = nil
}
