package reid

import (
	"errors"
	"fmt"
	"sync"
)

// ErrExtraction wraps failures of the external feature extractor for a
// single record. Batch operations recover from it by skipping the record.
var ErrExtraction = errors.New("feature extraction failed")

// FeatureExtractor maps an image to an appearance feature vector for the
// given algorithm family. Implemented by the external inference backend;
// the core only defines the contract and the dimension policy applied to
// its output.
type FeatureExtractor interface {
	Extract(image []byte, algorithm Algorithm) ([]float64, error)
}

// ExtractorFunc adapts a function to the FeatureExtractor interface.
type ExtractorFunc func(image []byte, algorithm Algorithm) ([]float64, error)

// Extract calls f.
func (f ExtractorFunc) Extract(image []byte, algorithm Algorithm) ([]float64, error) {
	return f(image, algorithm)
}

// ModelLoader loads the model handle for an algorithm. Called at most once
// per algorithm by the cache; the returned handle is treated as immutable.
type ModelLoader func(algorithm Algorithm) (any, error)

// ModelCache is the per-algorithm model store. Loading is guarded so that
// concurrent callers for the same algorithm trigger a single load; after
// that, reads are lock-free copies of an immutable handle.
type ModelCache struct {
	mu     sync.Mutex
	models map[Algorithm]any
	loader ModelLoader
}

// NewModelCache creates a cache around the given loader.
func NewModelCache(loader ModelLoader) *ModelCache {
	return &ModelCache{
		models: make(map[Algorithm]any),
		loader: loader,
	}
}

// GetOrLoad returns the cached model for the algorithm, loading it on first
// use. A failed load is not cached, so a later call may retry.
func (c *ModelCache) GetOrLoad(algorithm Algorithm) (any, error) {
	if _, err := ParseAlgorithm(string(algorithm)); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[algorithm]; ok {
		return m, nil
	}
	m, err := c.loader(algorithm)
	if err != nil {
		return nil, fmt.Errorf("load %s model: %w", algorithm, err)
	}
	c.models[algorithm] = m
	return m, nil
}

// Loaded reports whether the algorithm's model is already in the cache.
func (c *ModelCache) Loaded(algorithm Algorithm) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.models[algorithm]
	return ok
}
