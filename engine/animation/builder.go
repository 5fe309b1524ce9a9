package animation

import (
	"fmt"

	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

// Skeleton is the joint set a clip is bound against.
type Skeleton interface {
	JointCount() int
	FindJoint(name string) (int, bool)
}

// BuildSequence validates a parsed clip document against skeleton and fills
// a new Sequence with its translation and rotation keys. Joints are placed by
// the index the skeleton reports for their name, not by document order.
func BuildSequence(name string, doc *resources.AnimationDocument, skeleton Skeleton) (*Sequence, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", core.ErrMissingField)
	}
	if doc.Children == nil {
		return nil, fmt.Errorf("%w: children", core.ErrMissingField)
	}

	jointCount := skeleton.JointCount()
	if len(doc.Children) != jointCount {
		return nil, fmt.Errorf("%w: clip animates %d joints, skeleton has %d",
			core.ErrJointCountMismatch, len(doc.Children), jointCount)
	}
	if jointCount > MaxJoints {
		return nil, fmt.Errorf("%w: %d joints, at most %d supported", core.ErrTooManyJoints, jointCount, MaxJoints)
	}

	if doc.FramesPerSecond == nil {
		return nil, fmt.Errorf("%w: frames_per_second", core.ErrMissingField)
	}
	fps := int(*doc.FramesPerSecond)
	if fps <= 0 {
		return nil, fmt.Errorf("%w: frames_per_second must be positive, got %v", core.ErrMalformedTrack, *doc.FramesPerSecond)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: name", core.ErrMissingField)
	}
	if doc.DurationSeconds == nil {
		return nil, fmt.Errorf("%w: duration_seconds", core.ErrMissingField)
	}
	if *doc.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: negative duration_seconds %v", core.ErrMalformedTrack, *doc.DurationSeconds)
	}

	sequence := NewSequence(name, jointCount)
	sequence.DurationSeconds = float32(*doc.DurationSeconds)
	sequence.FrameDelaySeconds = 1.0 / float32(fps)

	core.LogDebug("animation: \"%s\" frames_per_second = %d (frame delay = %.4f)", doc.Name, fps, sequence.FrameDelaySeconds)

	seen := make(map[int]bool, jointCount)
	for i := range doc.Children {
		node := &doc.Children[i]

		jointIndex, ok := skeleton.FindJoint(node.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrJointNotFound, node.Name)
		}
		if seen[jointIndex] {
			return nil, fmt.Errorf("%w: joint %q animated twice", core.ErrMalformedTrack, node.Name)
		}
		seen[jointIndex] = true

		if node.Scale == nil || node.Rotation == nil || node.Translation == nil {
			return nil, fmt.Errorf("%w: joint %q needs scale, rotation and translation tracks", core.ErrMissingField, node.Name)
		}

		if err := fillTrack(sequence, jointIndex, ComponentTranslationX, 3, node.Translation); err != nil {
			return nil, fmt.Errorf("joint %q translation: %w", node.Name, err)
		}
		if err := fillTrack(sequence, jointIndex, ComponentRotationX, 4, node.Rotation); err != nil {
			return nil, fmt.Errorf("joint %q rotation: %w", node.Name, err)
		}
	}

	return sequence, nil
}

// fillTrack writes a track of width-component tuples into consecutive
// keyframe lists starting at firstComponent. Missing key times are derived
// from the frame delay.
func fillTrack(sequence *Sequence, joint, firstComponent, width int, track *resources.TrackDocument) error {
	totalKeys := len(track.Value)
	if track.Time != nil && len(track.Time) != totalKeys {
		return fmt.Errorf("%w: %d times for %d values", core.ErrMalformedTrack, len(track.Time), totalKeys)
	}

	lists := make([]*KeyframeList, width)
	for c := 0; c < width; c++ {
		kl := sequence.KeyframeList(joint, firstComponent+c)
		kl.Allocate(totalKeys)
		kl.DurationSeconds = sequence.DurationSeconds
		lists[c] = kl
	}

	for index, value := range track.Value {
		if len(value) != width {
			return fmt.Errorf("%w: key %d has %d components, want %d", core.ErrMalformedTrack, index, len(value), width)
		}
		seconds := sequence.FrameDelaySeconds * float32(index)
		if track.Time != nil {
			seconds = track.Time[index]
		}
		for c := 0; c < width; c++ {
			lists[c].SetKey(index, seconds, value[c])
		}
	}
	return nil
}
