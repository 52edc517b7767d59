package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/similarity-engine/backend/internal/catalog"
	"github.com/similarity-engine/backend/internal/config"
	"github.com/similarity-engine/backend/internal/index"
	"github.com/similarity-engine/backend/internal/storage"
	"github.com/similarity-engine/backend/internal/vectorizer"
)

// Engine orchestrates the catalog -> vectorizer -> index pipeline
type Engine struct {
	Config    *config.Config
	Logger    *logrus.Entry
	Catalog   []catalog.Movie
	Storage   storage.SnapshotStore
	Stopwords vectorizer.Stopwords

	// State: the built model and index. Swapped atomically under mu so
	// queries stay consistent across rebuilds.
	mu    sync.RWMutex
	model *vectorizer.Model
	index *index.Index

	// Stats
	Stats EngineStats
}

type EngineStats struct {
	Documents      int
	VocabularySize int
	Mode           string
	BuildDuration  time.Duration
	BuiltAt        time.Time
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, store storage.SnapshotStore, movies []catalog.Movie) (*Engine, error) {
	if _, err := vectorizer.ParseMode(cfg.Search.Mode); err != nil {
		return nil, err
	}

	stopwords := vectorizer.EnglishStopwords
	if cfg.Dataset.StopwordsFile != "" {
		loaded, err := vectorizer.LoadStopwords(cfg.Dataset.StopwordsFile)
		if err != nil {
			return nil, err
		}
		stopwords = loaded
	}

	return &Engine{
		Config:    cfg,
		Logger:    logger,
		Catalog:   movies,
		Storage:   store,
		Stopwords: stopwords,
	}, nil
}

// BuildIndex fits the vectorizer over the catalog, builds a fresh
// similarity index and swaps it in. The previous index keeps serving
// queries until the swap.
func (e *Engine) BuildIndex() error {
	mode, err := vectorizer.ParseMode(e.Config.Search.Mode)
	if err != nil {
		return err
	}

	start := time.Now()
	model, err := vectorizer.Fit(e.documents(), mode, e.Stopwords)
	if err != nil {
		return fmt.Errorf("failed to fit vectorizer: %w", err)
	}

	labels := make([]string, len(e.Catalog))
	for i := range e.Catalog {
		labels[i] = e.Catalog[i].Title
	}

	ix, err := index.Build(model.Matrix, labels, index.KernelFor(mode))
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	elapsed := time.Since(start)
	e.swap(model, ix, elapsed)
	e.Logger.WithFields(logrus.Fields{
		"documents":  ix.Len(),
		"vocabulary": model.Vocabulary.Size(),
		"mode":       mode.String(),
		"duration":   elapsed,
	}).Info("Similarity index built")

	if e.Storage != nil {
		if err := e.Storage.Save(e.snapshot()); err != nil {
			// A failed save leaves the in-memory index intact.
			e.Logger.WithError(err).Error("Failed to persist index snapshot")
		}
	}
	return nil
}

// RestoreSnapshot rebuilds the in-memory index from the snapshot store.
func (e *Engine) RestoreSnapshot() error {
	if e.Storage == nil {
		return fmt.Errorf("no snapshot store configured")
	}
	snap, err := e.Storage.Load()
	if err != nil {
		return err
	}

	mode, err := vectorizer.ParseMode(snap.Mode)
	if err != nil {
		return err
	}
	vocab, err := vectorizer.VocabularyFromMap(snap.Vocabulary)
	if err != nil {
		return err
	}

	matrix := make([]vectorizer.Vector, len(snap.Documents))
	labels := make([]string, len(snap.Documents))
	for i, doc := range snap.Documents {
		vec := vectorizer.Vector{
			Indices: make([]int, len(doc.Terms)),
			Values:  make([]float64, len(doc.Terms)),
			Dim:     snap.Dim,
		}
		for j, tw := range doc.Terms {
			vec.Indices[j] = tw.Index
			vec.Values[j] = tw.Weight
		}
		matrix[i] = vec
		labels[i] = doc.Label
	}

	model := &vectorizer.Model{Vocabulary: vocab, Matrix: matrix, Mode: mode}
	ix, err := index.Build(matrix, labels, index.KernelFor(mode))
	if err != nil {
		return err
	}

	e.swap(model, ix, 0)
	e.mu.Lock()
	e.Stats.BuiltAt = snap.BuiltAt
	e.mu.Unlock()

	e.Logger.WithFields(logrus.Fields{
		"documents":  ix.Len(),
		"vocabulary": vocab.Size(),
	}).Info("Similarity index restored from snapshot")
	return nil
}

// Similar returns the top-k titles most similar to the given title.
func (e *Engine) Similar(title string, k int) ([]index.Result, error) {
	e.mu.RLock()
	ix := e.index
	e.mu.RUnlock()

	if ix == nil {
		return nil, fmt.Errorf("similarity index not built")
	}
	return ix.Query(title, k)
}

// Ready reports whether an index is available for queries.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index != nil
}

// documents assembles the tokenized corpus from the configured source:
// metadata soup tokens or the tokenized plot overview.
func (e *Engine) documents() [][]string {
	var stem vectorizer.Stemmer
	if e.Config.Search.EnableStemming {
		stem = vectorizer.SnowballStemmer
	}

	docs := make([][]string, len(e.Catalog))
	for i := range e.Catalog {
		m := &e.Catalog[i]
		switch e.Config.Search.Source {
		case "overview":
			docs[i] = vectorizer.Tokenize(m.Overview, e.Stopwords, stem)
		default:
			docs[i] = catalog.Soup(m, e.Config.Search.CastLimit)
		}
	}
	return docs
}

func (e *Engine) swap(model *vectorizer.Model, ix *index.Index, buildTime time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = model
	e.index = ix
	e.Stats = EngineStats{
		Documents:      ix.Len(),
		VocabularySize: model.Vocabulary.Size(),
		Mode:           model.Mode.String(),
		BuildDuration:  buildTime,
		BuiltAt:        time.Now(),
	}
}

// snapshot converts the built model into its persisted form: vocabulary as
// a token-to-index map, each document as a sparse (index, weight) list.
func (e *Engine) snapshot() *storage.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := &storage.Snapshot{
		Mode:       e.model.Mode.String(),
		Dim:        e.model.Vocabulary.Size(),
		Vocabulary: e.model.Vocabulary.AsMap(),
		Documents:  make([]storage.DocumentRecord, len(e.model.Matrix)),
		BuiltAt:    e.Stats.BuiltAt,
	}
	for id, vec := range e.model.Matrix {
		doc := storage.DocumentRecord{
			ID:    id,
			Label: e.index.Label(id),
			Terms: make([]storage.TermWeight, len(vec.Indices)),
		}
		for j := range vec.Indices {
			doc.Terms[j] = storage.TermWeight{Index: vec.Indices[j], Weight: vec.Values[j]}
		}
		snap.Documents[id] = doc
	}
	return snap
}
