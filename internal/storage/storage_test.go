package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/similarity-engine/backend/internal/storage"
)

func sampleSnapshot() *storage.Snapshot {
	return &storage.Snapshot{
		Mode: "tfidf",
		Dim:  3,
		Vocabulary: map[string]int{
			"story": 0,
			"toy":   1,
			"war":   2,
		},
		Documents: []storage.DocumentRecord{
			{ID: 0, Label: "ToyMovie", Terms: []storage.TermWeight{{Index: 0, Weight: 0.4}, {Index: 1, Weight: 0.9}}},
			{ID: 1, Label: "WarMovie", Terms: []storage.TermWeight{{Index: 0, Weight: 0.6}, {Index: 2, Weight: 0.8}}},
			{ID: 2, Label: "Empty"},
		},
		BuiltAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func assertSnapshotsEqual(t *testing.T, want, got *storage.Snapshot) {
	t.Helper()
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Dim, got.Dim)
	assert.Equal(t, want.Vocabulary, got.Vocabulary)
	assert.True(t, want.BuiltAt.Equal(got.BuiltAt))
	assert.Len(t, got.Documents, len(want.Documents))
	for i := range want.Documents {
		assert.Equal(t, want.Documents[i].ID, got.Documents[i].ID)
		assert.Equal(t, want.Documents[i].Label, got.Documents[i].Label)
		assert.Equal(t, want.Documents[i].Terms, got.Documents[i].Terms)
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "index.json")
	store, err := storage.NewFileStore(path)
	assert.NoError(t, err)
	defer store.Close()

	snap := sampleSnapshot()
	assert.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	assert.NoError(t, err)
	assertSnapshotsEqual(t, snap, loaded)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "index.json"))
	assert.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	assert.NoError(t, err)
	defer store.Close()

	snap := sampleSnapshot()
	assert.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	assert.NoError(t, err)
	assertSnapshotsEqual(t, snap, loaded)
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	assert.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Save(sampleSnapshot()))

	smaller := &storage.Snapshot{
		Mode:       "count",
		Dim:        1,
		Vocabulary: map[string]int{"drama": 0},
		Documents: []storage.DocumentRecord{
			{ID: 0, Label: "Drama", Terms: []storage.TermWeight{{Index: 0, Weight: 1}}},
		},
		BuiltAt: time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
	}
	assert.NoError(t, store.Save(smaller))

	loaded, err := store.Load()
	assert.NoError(t, err)
	assertSnapshotsEqual(t, smaller, loaded)
}

func TestSQLiteStoreLoadEmpty(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	assert.NoError(t, err)
	defer store.Close()

	_, err = store.Load()
	assert.Error(t, err)
}
