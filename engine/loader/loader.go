package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
	"golang.org/x/sync/singleflight"
)

// ErrUnsupportedFormat is returned for files no backend can import.
// FBX assets in particular have to be converted to GLB before they can be loaded.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model
	clipCache  map[string][]*model.AnimationClip

	backend loaderBackend
	queue   dispatch.Queue
	root    string
	group   singleflight.Group
}

// Loader imports model and animation assets and caches them by path.
// Cached models and clips are shared and must be treated as read-only by callers.
type Loader interface {
	// Load imports a model, or returns the cached instance for the same path.
	//
	// Parameters:
	//   - path: the asset path, relative paths resolve against the asset root
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the import error
	Load(path string) (model.Model, error)

	// LoadBytes imports a model from memory and caches it under name.
	//
	// Parameters:
	//   - name: the cache key and fallback model name
	//   - data: the raw .glb or .gltf contents
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: the import error, if any
	LoadBytes(name string, data []byte) (model.Model, error)

	// LoadAnimations imports only the clips of an animation asset.
	// An asset holding exactly one unnamed clip names it after the file stem,
	// so "Typing.glb" yields a clip called "Typing".
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - []*model.AnimationClip: the clips, carrying bone names for retargeting
	//   - error: ErrUnsupportedFormat for unknown extensions, or the import error
	LoadAnimations(path string) ([]*model.AnimationClip, error)

	// LoadAsync runs Load on the dispatch queue's workers and posts done back to the draining thread.
	// Without a queue the load runs synchronously and done is called before LoadAsync returns.
	//
	// Parameters:
	//   - path: the asset path
	//   - done: receives the result on the draining thread
	LoadAsync(path string, done func(model.Model, error))

	// LoadAnimationsAsync is the asynchronous form of LoadAnimations.
	//
	// Parameters:
	//   - path: the asset path
	//   - done: receives the result on the draining thread
	LoadAnimationsAsync(path string, done func([]*model.AnimationClip, error))

	// Get returns a cached model by path, or nil.
	//
	// Parameters:
	//   - path: the asset path used when loading
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(path string) model.Model

	// Models returns a snapshot of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: cache key to model
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the provided options.
//
// Parameters:
//   - options: variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the newly created Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
		clipCache:  make(map[string][]*model.AnimationClip),
		backend:    newGLTFLoaderBackend(),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	v, err, _ := l.group.Do("model:"+path, func() (any, error) {
		if cached := l.Get(path); cached != nil {
			return cached, nil
		}

		backend, err := l.resolveBackend(path)
		if err != nil {
			return nil, err
		}

		resolved := l.resolve(path)
		imported, err := backend.Load(resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		m := model.NewModel(model.FromImported(imported), model.WithSourcePath(resolved))
		slog.Debug("loader: model loaded", "path", path, "bones", boneCount(imported.Skeleton), "clips", len(imported.Animations))

		l.mu.Lock()
		l.modelCache[path] = m
		l.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(model.Model), nil
}

func (l *loader) LoadBytes(name string, data []byte) (model.Model, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	imported, err := l.backend.LoadBytes(name, data, l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}

	m := model.NewModel(model.FromImported(imported))

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadAnimations(path string) ([]*model.AnimationClip, error) {
	l.mu.RLock()
	cached, ok := l.clipCache[path]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := l.group.Do("clips:"+path, func() (any, error) {
		backend, err := l.resolveBackend(path)
		if err != nil {
			return nil, err
		}

		clips, err := backend.LoadAnimations(l.resolve(path))
		if err != nil {
			return nil, fmt.Errorf("failed to load animations %s: %w", path, err)
		}

		l.mu.Lock()
		l.clipCache[path] = clips
		l.mu.Unlock()
		return clips, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.AnimationClip), nil
}

func (l *loader) LoadAsync(path string, done func(model.Model, error)) {
	if l.queue == nil {
		done(l.Load(path))
		return
	}
	l.queue.Async(func() (any, error) {
		return l.Load(path)
	}, func(result any, err error) {
		m, _ := result.(model.Model)
		done(m, err)
	})
}

func (l *loader) LoadAnimationsAsync(path string, done func([]*model.AnimationClip, error)) {
	if l.queue == nil {
		done(l.LoadAnimations(path))
		return
	}
	l.queue.Async(func() (any, error) {
		return l.LoadAnimations(path)
	}, func(result any, err error) {
		clips, _ := result.([]*model.AnimationClip)
		done(clips, err)
	})
}

func (l *loader) Get(path string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[path]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects the backend for a file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
}

func (l *loader) resolve(path string) string {
	if l.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

func boneCount(s *model.Skeleton) int {
	if s == nil {
		return 0
	}
	return len(s.Bones)
}
