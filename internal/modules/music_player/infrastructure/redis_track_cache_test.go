package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

type fakeTrackCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeTrackCache() *fakeTrackCache {
	return &fakeTrackCache{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeTrackCache) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return nil, errCacheMiss
	}
	return value, nil
}

func (f *fakeTrackCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

type countingResolver struct {
	result *ports.LoadResult
	err    error
	calls  int
}

func (r *countingResolver) LoadTracks(context.Context, string) (*ports.LoadResult, error) {
	r.calls++
	return r.result, r.err
}

func cachedResult() *ports.LoadResult {
	return &ports.LoadResult{
		Tracks: []domain.TrackCandidate{{
			Query:    "https://youtu.be/abc",
			Encoded:  "QAAA",
			Title:    "Song",
			Duration: 3 * time.Minute,
		}},
		CollectionName: "Mix",
	}
}

func TestCachedTrackResolver_HitSkipsBackend(t *testing.T) {
	cache := newFakeTrackCache()
	backend := &countingResolver{result: cachedResult()}
	r := newCachedTrackResolver(backend, cache, time.Hour)

	for range 2 {
		result, err := r.LoadTracks(context.Background(), "https://youtu.be/abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Tracks) != 1 || result.Tracks[0].Encoded != "QAAA" {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Tracks[0].Duration != 3*time.Minute || result.CollectionName != "Mix" {
			t.Errorf("cached result lost fields: %+v", result)
		}
	}

	if backend.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", backend.calls)
	}
	if ttl := cache.ttls[trackCacheKeyPrefix+"https://youtu.be/abc"]; ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ttl)
	}
}

func TestCachedTrackResolver_DoesNotCacheEmptyOrFailed(t *testing.T) {
	tests := []struct {
		name    string
		backend *countingResolver
		wantErr bool
	}{
		{
			name:    "empty result",
			backend: &countingResolver{result: &ports.LoadResult{}},
		},
		{
			name:    "backend error",
			backend: &countingResolver{err: errors.New("lavalink down")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeTrackCache()
			r := newCachedTrackResolver(tt.backend, cache, time.Hour)

			_, err := r.LoadTracks(context.Background(), "query")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(cache.values) != 0 {
				t.Errorf("expected nothing cached, got %d entries", len(cache.values))
			}
		})
	}
}

func TestCachedTrackResolver_CacheFailuresFallThrough(t *testing.T) {
	cache := newFakeTrackCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	backend := &countingResolver{result: cachedResult()}
	r := newCachedTrackResolver(backend, cache, time.Hour)

	result, err := r.LoadTracks(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsEmpty() {
		t.Error("expected backend result")
	}
}

func TestCachedTrackResolver_MalformedEntryReloads(t *testing.T) {
	cache := newFakeTrackCache()
	cache.values[trackCacheKeyPrefix+"query"] = []byte("{not json")
	backend := &countingResolver{result: cachedResult()}
	r := newCachedTrackResolver(backend, cache, time.Hour)

	if _, err := r.LoadTracks(context.Background(), "query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("expected backend to be called, got %d calls", backend.calls)
	}
}
