package reid

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCacheLoadsOnce(t *testing.T) {
	var loads int32
	cache := NewModelCache(func(alg Algorithm) (any, error) {
		atomic.AddInt32(&loads, 1)
		return string(alg) + "-model", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := cache.GetOrLoad(AlgorithmMGN)
			assert.NoError(t, err)
			assert.Equal(t, "mgn-model", m)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	assert.True(t, cache.Loaded(AlgorithmMGN))
	assert.False(t, cache.Loaded(AlgorithmAGW))
}

func TestModelCachePerAlgorithm(t *testing.T) {
	cache := NewModelCache(func(alg Algorithm) (any, error) {
		return string(alg), nil
	})

	m1, err := cache.GetOrLoad(AlgorithmAGW)
	require.NoError(t, err)
	m2, err := cache.GetOrLoad(AlgorithmSBS)
	require.NoError(t, err)
	assert.Equal(t, "agw", m1)
	assert.Equal(t, "sbs", m2)
}

func TestModelCacheFailedLoadNotCached(t *testing.T) {
	fail := true
	loads := 0
	cache := NewModelCache(func(Algorithm) (any, error) {
		loads++
		if fail {
			return nil, errors.New("weights missing")
		}
		return "model", nil
	})

	_, err := cache.GetOrLoad(AlgorithmMGN)
	require.Error(t, err)
	assert.False(t, cache.Loaded(AlgorithmMGN))

	// A later call retries the load.
	fail = false
	m, err := cache.GetOrLoad(AlgorithmMGN)
	require.NoError(t, err)
	assert.Equal(t, "model", m)
	assert.Equal(t, 2, loads)
}

func TestModelCacheRejectsUnknownAlgorithm(t *testing.T) {
	cache := NewModelCache(func(Algorithm) (any, error) { return "model", nil })
	_, err := cache.GetOrLoad(Algorithm("resnet"))
	assert.Error(t, err)
}
