package loader

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-vr/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithQueue is an option builder that sets the dispatch queue used by LoadAsync.
//
// Parameters:
//   - q: the queue whose workers import assets and whose Drain delivers completions
//
// Returns:
//   - LoaderBuilderOption: a function that applies the queue option to a loader
func WithQueue(q dispatch.Queue) LoaderBuilderOption {
	return func(l *loader) {
		l.queue = q
	}
}

// WithAssetRoot is an option builder that sets the directory relative asset paths resolve against.
// Cache keys stay the paths as given.
//
// Parameters:
//   - dir: the asset root directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset root option to a loader
func WithAssetRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.root = dir
	}
}

// WithModel is an option builder that pre-populates the cache, so Load(key) returns m without touching disk.
//
// Parameters:
//   - key: the cache key (asset path)
//   - m: the model
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}

// WithAnimations is an option builder that pre-populates the animation cache for key.
//
// Parameters:
//   - key: the cache key (asset path)
//   - clips: the clips
//
// Returns:
//   - LoaderBuilderOption: a function that applies the animations option to a loader
func WithAnimations(key string, clips []*model.AnimationClip) LoaderBuilderOption {
	return func(l *loader) {
		l.clipCache[key] = clips
	}
}
