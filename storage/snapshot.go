package storage

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jerryola1/evergreen/domain"
)

type fetcher interface {
	FetchBusinesses(ctx context.Context) ([]domain.Business, error)
}

// evicter is implemented by stores able to drop cached state ahead of a
// forced reload.
type evicter interface {
	Evict(ctx context.Context)
}

// Loader owns the in-memory snapshot lifecycle. The current snapshot sits
// behind an atomic pointer and is replaced wholesale, so readers never
// observe a partially loaded collection. Overlapping fetches collapse into a
// single in-flight call instead of racing last-write-wins: plain loads share
// one flight, forced reloads share a separate one so a reload never returns
// a result fetched before the write that triggered it.
type Loader struct {
	store   fetcher
	group   singleflight.Group
	current atomic.Pointer[domain.Snapshot]
	now     func() time.Time
}

// NewLoader creates a Loader over the given store.
func NewLoader(store fetcher) *Loader {
	if store == nil {
		panic("storage.NewLoader: store is nil")
	}
	return &Loader{store: store, now: time.Now}
}

// Current returns the snapshot in memory, nil before the first successful
// load.
func (l *Loader) Current() *domain.Snapshot {
	return l.current.Load()
}

// Load returns the current snapshot, fetching one first when none is loaded
// yet. A warm cache layer is allowed to answer the initial fetch.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	if snap := l.current.Load(); snap != nil {
		return snap, nil
	}
	return l.fetch(ctx, "load", false)
}

// Reload fetches the full collection and swaps the snapshot. Any cache layer
// is evicted first so the fetch reaches the backing store. A failed fetch
// leaves the previous snapshot untouched.
func (l *Loader) Reload(ctx context.Context) (*domain.Snapshot, error) {
	return l.fetch(ctx, "reload", true)
}

func (l *Loader) fetch(ctx context.Context, flight string, evict bool) (*domain.Snapshot, error) {
	v, err, _ := l.group.Do(flight, func() (interface{}, error) {
		if evict {
			if ev, ok := l.store.(evicter); ok {
				ev.Evict(ctx)
			}
		}
		businesses, err := l.store.FetchBusinesses(ctx)
		if err != nil {
			return nil, err
		}
		snap := &domain.Snapshot{Businesses: businesses, LoadedAt: l.now()}
		l.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}
