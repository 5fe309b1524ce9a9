package animation

// Keyframe is a single authored sample.
type Keyframe struct {
	// absolute time for the keyframe
	Seconds float32
	// value at Seconds
	Value float32
}

// KeyframeList holds the samples of one scalar channel of one joint. Keys are
// expected in ascending Seconds order; this is not validated.
type KeyframeList struct {
	Keys            []Keyframe
	DurationSeconds float32
}

// Allocate reserves storage for keyCount keys, discarding prior content.
func (kl *KeyframeList) Allocate(keyCount int) {
	kl.Keys = make([]Keyframe, keyCount)
}

// Deallocate releases the key storage.
func (kl *KeyframeList) Deallocate() {
	kl.Keys = nil
}

// SetKey writes one sample. index must be within the allocated range.
func (kl *KeyframeList) SetKey(index int, seconds, value float32) {
	kl.Keys[index] = Keyframe{Seconds: seconds, Value: value}
}

func (kl *KeyframeList) TotalKeys() int {
	return len(kl.Keys)
}
