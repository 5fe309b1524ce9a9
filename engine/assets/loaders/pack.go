package loaders

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

// Buckets of a resource pack.
const (
	PackBucketAnimations = "animations"
	PackBucketSkeletons  = "skeletons"
	PackBucketTags       = "tags"
)

// PackLoader serves clips and skeletons out of a bbolt resource pack built
// by animpack. Entries hold the same bytes as the files on disk and are keyed
// by asset name without extension.
type PackLoader struct {
	path string
	db   *bolt.DB
}

// OpenPack opens a resource pack read-only.
func OpenPack(path string) (*PackLoader, error) {
	db, err := bolt.Open(path, 0444, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open resource pack %s: %w", path, err)
	}
	return &PackLoader{path: path, db: db}, nil
}

func (pl *PackLoader) Path() string {
	return pl.path
}

func (pl *PackLoader) Load(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	var bucket string
	switch resourceType {
	case resources.ResourceTypeAnimation:
		bucket = PackBucketAnimations
	case resources.ResourceTypeSkeleton:
		bucket = PackBucketSkeletons
	default:
		return nil, fmt.Errorf("%w: %s in resource pack", core.ErrNoLoader, resourceType)
	}

	data, err := pl.get(bucket, name)
	if err != nil {
		return nil, err
	}

	res := &resources.Resource{
		FullPath: pl.path + ":" + bucket + "/" + name,
		Type:     resourceType,
		DataSize: uint64(len(data)),
	}
	switch resourceType {
	case resources.ResourceTypeAnimation:
		doc, err := DecodeAnimationDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", res.FullPath, err)
		}
		res.Name = resourceName(params, doc.Name)
		res.Data = doc
	case resources.ResourceTypeSkeleton:
		skeleton, err := DecodeSkeleton(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", res.FullPath, err)
		}
		res.Name = resourceName(params, skeleton.Name)
		res.Data = skeleton
	}
	return res, nil
}

func (pl *PackLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}

// Has reports whether the pack holds an entry for name.
func (pl *PackLoader) Has(resourceType resources.ResourceType, name string) bool {
	bucket := PackBucketAnimations
	if resourceType == resources.ResourceTypeSkeleton {
		bucket = PackBucketSkeletons
	}
	_, err := pl.get(bucket, name)
	return err == nil
}

// Tagged returns the clip names stored under tag.
func (pl *PackLoader) Tagged(tag string) ([]string, error) {
	data, err := pl.get(PackBucketTags, tag)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag, err)
	}
	return names, nil
}

// Names lists the keys of one bucket.
func (pl *PackLoader) Names(bucket string) ([]string, error) {
	var names []string
	err := pl.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}
		return buck.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func (pl *PackLoader) Close() error {
	return pl.db.Close()
}

func (pl *PackLoader) get(bucket, key string) ([]byte, error) {
	var data []byte
	err := pl.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return fmt.Errorf("%w: bucket %q not in pack %s", core.ErrAssetNotFound, bucket, pl.path)
		}
		value := buck.Get([]byte(key))
		if value == nil {
			return fmt.Errorf("%w: %s/%s in pack %s", core.ErrAssetNotFound, bucket, key, pl.path)
		}
		// bbolt values are only valid inside the transaction
		data = append([]byte(nil), value...)
		return nil
	})
	return data, err
}

// EncodeTag serializes the clip names of one tag for the tags bucket.
func EncodeTag(names []string) ([]byte, error) {
	return yaml.Marshal(names)
}
