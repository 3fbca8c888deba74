package runstore

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CachedStore wraps a Store with an in-memory read cache. Artifacts are
// write-once, so cached entries can never go stale.
type CachedStore struct {
	inner Store
	cache *cache.Cache
}

// NewCachedStore caches artifact and micro-row reads for ttl.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: cache.New(ttl, ttl*2),
	}
}

func (s *CachedStore) SaveArtifact(ctx context.Context, runID string, data []byte) error {
	if err := s.inner.SaveArtifact(ctx, runID, data); err != nil {
		return err
	}
	s.cache.Set(artifactKey(runID), data, cache.DefaultExpiration)
	return nil
}

func (s *CachedStore) LoadArtifact(ctx context.Context, runID string) ([]byte, error) {
	if data, found := s.cache.Get(artifactKey(runID)); found {
		return data.([]byte), nil
	}
	data, err := s.inner.LoadArtifact(ctx, runID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(artifactKey(runID), data, cache.DefaultExpiration)
	return data, nil
}

func (s *CachedStore) ListRuns(ctx context.Context) ([]string, error) {
	return s.inner.ListRuns(ctx)
}

// Cached reports whether the artifact is currently held in memory, so callers
// can distinguish a cache hit from a disk read.
func (s *CachedStore) Cached(runID string) bool {
	_, found := s.cache.Get(artifactKey(runID))
	return found
}

func (s *CachedStore) SaveMicroRows(ctx context.Context, runID string, data []byte) (string, error) {
	path, err := s.inner.SaveMicroRows(ctx, runID, data)
	if err != nil {
		return "", err
	}
	s.cache.Set(microRowsKey(runID), data, cache.DefaultExpiration)
	return path, nil
}

func (s *CachedStore) LoadMicroRows(ctx context.Context, runID string) ([]byte, error) {
	if data, found := s.cache.Get(microRowsKey(runID)); found {
		return data.([]byte), nil
	}
	data, err := s.inner.LoadMicroRows(ctx, runID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(microRowsKey(runID), data, cache.DefaultExpiration)
	return data, nil
}

func artifactKey(runID string) string  { return "artifact:" + runID }
func microRowsKey(runID string) string { return "microrows:" + runID }
