package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-skeletal/engine/assets/loaders"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/engine/resources"
)

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the animation and skeleton files under an asset
// directory, keeps the index current with fsnotify and resolves asset names
// to loaders. Names are slash-separated paths relative to the asset directory
// without extension, e.g. "animations/wave". A mounted resource pack serves
// names that are not on disk.
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader
	pack    *loaders.PackLoader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	abs, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.baseDir = abs

	if err := am.addRecursive(am.baseDir); err != nil {
		return err
	}

	am.stopped.Add(1)
	go am.start()

	// Register loaders
	am.registerLoader(resources.ResourceTypeAnimation, &loaders.AnimationLoader{})
	am.registerLoader(resources.ResourceTypeSkeleton, &loaders.SkeletonLoader{})

	am.mutex.RLock()
	core.LogInfo("asset manager indexed %d assets under %s", len(am.assets), am.baseDir)
	am.mutex.RUnlock()
	return nil
}

// MountPack opens a resource pack used for names missing from disk.
func (am *AssetManager) MountPack(path string) error {
	pack, err := loaders.OpenPack(path)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	old := am.pack
	am.pack = pack
	am.mutex.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			core.LogWarn("failed to close resource pack %s: %s", old.Path(), err)
		}
	}
	core.LogInfo("mounted resource pack %s", path)
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// LoadAsset loads the named asset of the given type from disk, or from the
// mounted pack when no such file exists.
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	ext := extensionFor(resourceType)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrNoLoader, resourceType)
	}
	key := filepath.ToSlash(name) + ext
	path := filepath.Join(am.baseDir, filepath.FromSlash(key))

	am.mutex.Lock()
	asset, exists := am.assets[key]
	if !exists {
		// the watcher may not have caught up with a new file yet
		if s, err := os.Stat(path); err == nil && !s.IsDir() {
			asset = AssetInfo{Path: path, Type: resourceType}
			exists = true
		}
	}
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	loader, loaderExists := am.loaders[resourceType]
	pack := am.pack
	am.mutex.Unlock()

	if !exists {
		if pack != nil {
			return pack.Load(filepath.ToSlash(name), resourceType, params)
		}
		return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, key)
	}
	if !loaderExists {
		return nil, fmt.Errorf("%w: %s", core.ErrNoLoader, resourceType)
	}
	return loader.Load(asset.Path, resourceType, params)
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNoLoader, asset.Type)
	}
	return loader.Unload(asset)
}

// LoadAnimation parses the named clip document and hands it to onLoad. Load
// failures are returned without calling onLoad.
func (am *AssetManager) LoadAnimation(name string, onLoad func(doc *resources.AnimationDocument) error) error {
	res, err := am.LoadAsset(name, resources.ResourceTypeAnimation, map[string]string{"name": name})
	if err != nil {
		return err
	}
	defer am.UnloadAsset(res)

	doc, ok := res.Data.(*resources.AnimationDocument)
	if !ok {
		return fmt.Errorf("%w: %s did not yield an animation document", core.ErrUnknown, res.FullPath)
	}
	return onLoad(doc)
}

func (am *AssetManager) LoadSkeleton(name string) (*resources.Skeleton, error) {
	res, err := am.LoadAsset(name, resources.ResourceTypeSkeleton, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	skeleton, ok := res.Data.(*resources.Skeleton)
	if !ok {
		return nil, fmt.Errorf("%w: %s did not yield a skeleton", core.ErrUnknown, res.FullPath)
	}
	return skeleton, nil
}

// Assets returns a snapshot of the indexed files.
func (am *AssetManager) Assets() map[string]AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make(map[string]AssetInfo, len(am.assets))
	for k, v := range am.assets {
		out[k] = v
	}
	return out
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	pack := am.pack
	am.pack = nil
	am.mutex.Unlock()

	close(am.done)
	am.stopped.Wait()
	if err := am.fsnotify.Close(); err != nil {
		core.LogWarn("failed to close asset watcher: %s", err)
	}

	if pack != nil {
		return pack.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	defer am.stopped.Done()
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			// Can't stat a deleted path, so drop it from the index and the
			// watch list in case it was a directory.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found along the way.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return
	}
	key, ok := am.keyFor(path)
	if !ok {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[key] = AssetInfo{
		Path: path,
		Type: assetType,
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	key, ok := am.keyFor(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, key)
}

func (am *AssetManager) keyFor(path string) (string, bool) {
	rel, err := filepath.Rel(am.baseDir, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".animation":
		return resources.ResourceTypeAnimation
	case ".skeleton":
		return resources.ResourceTypeSkeleton
	default:
		return resources.ResourceTypeNone
	}
}

func extensionFor(resourceType resources.ResourceType) string {
	switch resourceType {
	case resources.ResourceTypeAnimation:
		return ".animation"
	case resources.ResourceTypeSkeleton:
		return ".skeleton"
	default:
		return ""
	}
}
