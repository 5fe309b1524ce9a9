package animation

import "github.com/spaghettifunk/anima-skeletal/engine/math"

// Channel evaluates one KeyframeList. It keeps no playback state, so every
// Evaluate call scans the keys from the start.
type Channel struct {
	keyframeList      *KeyframeList
	frameDelaySeconds float32
}

// SetKeyframeList binds the channel to a source list and the frame delay of
// the sequence that owns it.
func (c *Channel) SetKeyframeList(source *KeyframeList, frameDelaySeconds float32) {
	c.keyframeList = source
	c.frameDelaySeconds = frameDelaySeconds
}

func (c *Channel) KeyframeList() *KeyframeList {
	return c.keyframeList
}

func (c *Channel) FrameDelaySeconds() float32 {
	return c.frameDelaySeconds
}

// Evaluate returns the channel value at tSeconds.
//
// Keys are assumed to be spaced frameDelaySeconds apart: the blend factor
// between the bracketing keys is (t - prev.Seconds) / frameDelaySeconds, not
// the real gap between them. Unevenly sampled lists therefore only
// approximate a linear blend. Before the first key the value is blended from
// the second key toward the first by gap/frameDelaySeconds, which holds the
// first value for evenly sampled data. After the last key its value is held.
// Clips with zero duration and empty lists evaluate to 0.
func (c *Channel) Evaluate(tSeconds, frameDelaySeconds float32) float32 {
	kl := c.keyframeList
	if kl.DurationSeconds == 0 || len(kl.Keys) == 0 {
		return 0
	}

	lastKey := len(kl.Keys) - 1
	for key := range kl.Keys {
		keyframe := &kl.Keys[key]
		if tSeconds < keyframe.Seconds {
			if key == 0 {
				// can't get previous; lerp forward
				if lastKey == 0 {
					return keyframe.Value
				}
				next := &kl.Keys[key+1]
				delta := next.Seconds - keyframe.Seconds
				return math.Lerp(next.Value, keyframe.Value, delta/frameDelaySeconds)
			}

			prev := &kl.Keys[key-1]
			alpha := (tSeconds - prev.Seconds) / frameDelaySeconds
			return math.Lerp(prev.Value, keyframe.Value, alpha)
		}
	}

	return kl.Keys[lastKey].Value
}
