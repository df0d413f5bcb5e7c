package catalog

import (
	"errors"
	"sync/atomic"
	"time"
)

var ErrNoSnapshot = errors.New("no catalog snapshot loaded")

// Snapshot is an immutable, versioned catalog. Solves hold a *Snapshot for their whole duration
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Source   string
	Catalog  Catalog
}

// Store owns the current catalog snapshot. Refreshing swaps in a fully built snapshot, never a partially updated one
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the latest snapshot, or ErrNoSnapshot if nothing was published yet
func (store *Store) Current() (*Snapshot, error) {
	snapshot := store.current.Load()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

// Publish validates the catalog and atomically replaces the current snapshot with it
func (store *Store) Publish(catalog Catalog, source string) (*Snapshot, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Version:  store.version.Add(1),
		LoadedAt: time.Now(),
		Source:   source,
		Catalog:  catalog,
	}
	store.current.Store(snapshot)
	return snapshot, nil
}

// Reload reads the catalog file and publishes it; on failure the previous snapshot stays current
func (store *Store) Reload(file string) (*Snapshot, error) {
	catalog, err := FromFile(file)
	if err != nil {
		return nil, err
	}
	return store.Publish(catalog, file)
}
