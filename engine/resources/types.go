package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown or unsupported file. */
	ResourceTypeNone ResourceType = iota
	/** @brief Animation clip document (.animation). */
	ResourceTypeAnimation
	/** @brief Skeleton description (.skeleton). */
	ResourceTypeSkeleton
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeAnimation:
		return "animation"
	case ResourceTypeSkeleton:
		return "skeleton"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource, or the pack key. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

// AnimationDocument is the parsed form of a .animation clip file. Pointer
// fields distinguish an absent key from a zero value.
type AnimationDocument struct {
	Name            string               `json:"name"`
	FramesPerSecond *float64             `json:"frames_per_second"`
	DurationSeconds *float64             `json:"duration_seconds"`
	Children        []JointTrackDocument `json:"children"`
}

// JointTrackDocument holds the keyed tracks of one joint.
type JointTrackDocument struct {
	Name        string         `json:"name"`
	Scale       *TrackDocument `json:"scale"`
	Rotation    *TrackDocument `json:"rotation"`
	Translation *TrackDocument `json:"translation"`
}

// TrackDocument is a list of key times and the parallel list of value tuples
// (3 components for translation and scale, x y z w for rotation).
type TrackDocument struct {
	Time  []float32   `json:"time"`
	Value [][]float32 `json:"value"`
}

// Joint is a named node of a Skeleton.
type Joint struct {
	Name   string `toml:"name"`
	Parent int    `toml:"parent"`
	Index  int    `toml:"-"`
}

// Skeleton is the joint hierarchy an animation clip is bound against.
type Skeleton struct {
	Name   string  `toml:"name"`
	Joints []Joint `toml:"joints"`
}

func (s *Skeleton) JointCount() int {
	return len(s.Joints)
}

// FindJoint returns the index of the joint with the given name.
func (s *Skeleton) FindJoint(name string) (int, bool) {
	for i := range s.Joints {
		if s.Joints[i].Name == name {
			return i, true
		}
	}
	return -1, false
}
