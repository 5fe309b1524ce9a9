package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spaghettifunk/anima-skeletal/engine/animation"
	"github.com/spaghettifunk/anima-skeletal/engine/assets/loaders"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

// Manifest lists what goes into a pack. File paths are relative to the
// manifest.
type Manifest struct {
	Skeletons []ManifestEntry `yaml:"skeletons"`
	Clips     []ManifestEntry `yaml:"clips"`

	dir string
}

type ManifestEntry struct {
	// Asset name the engine asks for, e.g. "animations/wave".
	Name string `yaml:"name"`
	File string `yaml:"file"`
	// Clips only: skeleton name to bind against while packing.
	Skeleton string   `yaml:"skeleton,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// PackSummary counts what BuildPack wrote.
type PackSummary struct {
	Skeletons int
	Clips     int
	Tags      int
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if len(m.Skeletons) == 0 && len(m.Clips) == 0 {
		return fmt.Errorf("nothing to pack")
	}
	skeletons := make(map[string]bool, len(m.Skeletons))
	for _, e := range m.Skeletons {
		if e.Name == "" || e.File == "" {
			return fmt.Errorf("%w: skeleton entries need name and file", core.ErrMissingField)
		}
		if skeletons[e.Name] {
			return fmt.Errorf("skeleton %s listed twice", e.Name)
		}
		skeletons[e.Name] = true
	}
	clips := make(map[string]bool, len(m.Clips))
	for _, e := range m.Clips {
		if e.Name == "" || e.File == "" {
			return fmt.Errorf("%w: clip entries need name and file", core.ErrMissingField)
		}
		if clips[e.Name] {
			return fmt.Errorf("clip %s listed twice", e.Name)
		}
		clips[e.Name] = true
		if e.Skeleton != "" && !skeletons[e.Skeleton] {
			return fmt.Errorf("clip %s binds unknown skeleton %s", e.Name, e.Skeleton)
		}
	}
	return nil
}

func (m *Manifest) read(file string) ([]byte, error) {
	if !filepath.IsAbs(file) {
		file = filepath.Join(m.dir, file)
	}
	return os.ReadFile(file)
}

// BuildPack validates every manifest entry and writes the pack to output,
// replacing any previous pack only once all entries are stored.
func BuildPack(m *Manifest, output string) (*PackSummary, error) {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, err
	}
	tmp := output + ".tmp"
	_ = os.Remove(tmp)

	db, err := bolt.Open(tmp, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	summary := &PackSummary{}
	err = db.Update(func(tx *bolt.Tx) error {
		return m.fill(tx, summary)
	})
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, output); err != nil {
		return nil, err
	}
	return summary, nil
}

func (m *Manifest) fill(tx *bolt.Tx, summary *PackSummary) error {
	skeletonBucket, err := tx.CreateBucketIfNotExists([]byte(loaders.PackBucketSkeletons))
	if err != nil {
		return err
	}
	animationBucket, err := tx.CreateBucketIfNotExists([]byte(loaders.PackBucketAnimations))
	if err != nil {
		return err
	}
	tagBucket, err := tx.CreateBucketIfNotExists([]byte(loaders.PackBucketTags))
	if err != nil {
		return err
	}

	skeletons := make(map[string]*resources.Skeleton, len(m.Skeletons))
	for _, e := range m.Skeletons {
		data, err := m.read(e.File)
		if err != nil {
			return err
		}
		skeleton, err := loaders.DecodeSkeleton(data)
		if err != nil {
			return fmt.Errorf("skeleton %s: %w", e.Name, err)
		}
		skeletons[e.Name] = skeleton
		if err := skeletonBucket.Put([]byte(e.Name), data); err != nil {
			return err
		}
		core.LogDebug("packed skeleton %s (%d joints)", e.Name, skeleton.JointCount())
		summary.Skeletons++
	}

	tags := make(map[string][]string)
	for _, e := range m.Clips {
		data, err := m.read(e.File)
		if err != nil {
			return err
		}
		doc, err := loaders.DecodeAnimationDocument(data)
		if err != nil {
			return fmt.Errorf("clip %s: %w", e.Name, err)
		}
		if e.Skeleton != "" {
			if _, err := animation.BuildSequence(e.Name, doc, skeletons[e.Skeleton]); err != nil {
				return fmt.Errorf("clip %s against skeleton %s: %w", e.Name, e.Skeleton, err)
			}
		}
		if err := animationBucket.Put([]byte(e.Name), data); err != nil {
			return err
		}
		for _, tag := range e.Tags {
			tags[tag] = append(tags[tag], e.Name)
		}
		core.LogDebug("packed clip %s (%d joints)", e.Name, len(doc.Children))
		summary.Clips++
	}

	tagNames := make([]string, 0, len(tags))
	for tag := range tags {
		tagNames = append(tagNames, tag)
	}
	sort.Strings(tagNames)
	for _, tag := range tagNames {
		encoded, err := loaders.EncodeTag(tags[tag])
		if err != nil {
			return err
		}
		if err := tagBucket.Put([]byte(tag), encoded); err != nil {
			return err
		}
		summary.Tags++
	}
	return nil
}
