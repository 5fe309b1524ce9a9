package loaders

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

// SkeletonLoader reads .skeleton files: TOML with a name and an ordered
// [[joints]] array. A joint's parent must precede it; roots use -1.
type SkeletonLoader struct{}

func (sl *SkeletonLoader) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	skeleton, err := DecodeSkeleton(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &resources.Resource{
		Name:     resourceName(params, skeleton.Name),
		FullPath: path,
		Type:     resources.ResourceTypeSkeleton,
		DataSize: uint64(unsafe.Sizeof(resources.Joint{})) * uint64(len(skeleton.Joints)),
		Data:     skeleton,
	}, nil
}

func (sl *SkeletonLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}

// DecodeSkeleton parses and validates a skeleton description.
func DecodeSkeleton(data []byte) (*resources.Skeleton, error) {
	skeleton := &resources.Skeleton{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(skeleton); err != nil {
		return nil, fmt.Errorf("failed to parse skeleton: %w", err)
	}

	if skeleton.Name == "" {
		return nil, fmt.Errorf("%w: skeleton name", core.ErrMissingField)
	}
	if len(skeleton.Joints) == 0 {
		return nil, fmt.Errorf("%w: skeleton %q has no joints", core.ErrMissingField, skeleton.Name)
	}

	names := make(map[string]bool, len(skeleton.Joints))
	for i := range skeleton.Joints {
		joint := &skeleton.Joints[i]
		if joint.Name == "" {
			return nil, fmt.Errorf("%w: joint %d name", core.ErrMissingField, i)
		}
		if names[joint.Name] {
			return nil, fmt.Errorf("skeleton %q: duplicate joint %q", skeleton.Name, joint.Name)
		}
		if joint.Parent < -1 || joint.Parent >= i {
			return nil, fmt.Errorf("skeleton %q: joint %q has parent %d, must be -1 or an earlier joint",
				skeleton.Name, joint.Name, joint.Parent)
		}
		names[joint.Name] = true
		joint.Index = i
	}
	return skeleton, nil
}
