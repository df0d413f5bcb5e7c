package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, name string, destination string) {
	t.Helper()
	bytes, err := os.ReadFile(testDirectory + name)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(destination, bytes, 0o644))
}

func TestStorePublish(t *testing.T) {
	store := NewStore()

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	first, err := store.Reload(testDirectory + "catalog.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)

	// A failed refresh keeps the previous snapshot
	_, err = store.Publish(Catalog{"ART2000": {Code: "ART2000", Credits: 3}}, "broken")
	assert.ErrorIs(t, err, ErrMalformedInput)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestStoreSwapIsAtomic(t *testing.T) {
	// Arrange
	small, err := FromFile(testDirectory + "catalog.json")
	require.NoError(t, err)
	large := GenerateCatalog(newTestRandom(), 40)

	store := NewStore()
	_, err = store.Publish(small, "small")
	require.NoError(t, err)

	// Act
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				// Assert: a reader sees either catalog as a whole, never a mix
				snapshot, err := store.Current()
				if !assert.NoError(t, err) {
					return
				}
				switch snapshot.Source {
				case "small":
					assert.Len(t, snapshot.Catalog, len(small))
				case "large":
					assert.Len(t, snapshot.Catalog, len(large))
				}
			}
		}()
	}

	for i := range 200 {
		if i%2 == 0 {
			_, err = store.Publish(large, "large")
		} else {
			_, err = store.Publish(small, "small")
		}
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(201), current.Version)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	// Arrange
	directory := t.TempDir()
	file := filepath.Join(directory, "catalog.json")
	copyFixture(t, "catalog.json", file)

	store := NewStore()
	_, err := store.Reload(file)
	require.NoError(t, err)

	watcher, err := NewWatcher(file, store, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// Act: a broken catalog is reported and ignored
	require.NoError(t, os.WriteFile(file, []byte(`{"courses": {"ART2000": {"credits": 3}}}`), 0o644))

	// Assert
	select {
	case event := <-watcher.Reloads:
		assert.ErrorIs(t, event.Err, ErrMalformedInput)
		assert.Nil(t, event.Snapshot)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing a broken catalog")
	}
	current, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), current.Version)

	// Act: a valid catalog replaces the snapshot
	copyFixture(t, "catalog.json", file)

	// Assert
	select {
	case event := <-watcher.Reloads:
		require.NoError(t, event.Err)
		assert.Equal(t, uint64(2), event.Snapshot.Version)
		assert.Len(t, event.Snapshot.Catalog, 7)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after restoring the catalog")
	}
}

func TestWatcherStop(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.json")
	copyFixture(t, "catalog.json", file)

	t.Run("Never started", func(t *testing.T) {
		watcher, err := NewWatcher(file, NewStore(), 0)
		require.NoError(t, err)

		assert.NotPanics(t, watcher.Stop)
		_, open := <-watcher.Reloads
		assert.False(t, open)
	})

	t.Run("Stopped twice", func(t *testing.T) {
		watcher, err := NewWatcher(file, NewStore(), 0)
		require.NoError(t, err)
		require.NoError(t, watcher.Start())

		watcher.Stop()
		assert.NotPanics(t, watcher.Stop)
	})
}
