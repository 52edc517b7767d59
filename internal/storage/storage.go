package storage

import "time"

// TermWeight is one non-zero entry of a sparse document vector.
type TermWeight struct {
	Index  int     `json:"i"`
	Weight float64 `json:"w"`
}

// DocumentRecord is one indexed document: its id, label and sparse weights.
type DocumentRecord struct {
	ID    int          `json:"id"`
	Label string       `json:"label"`
	Terms []TermWeight `json:"terms"`
}

// Snapshot is a persisted similarity index: the vocabulary as a
// token-to-index map and every document as a sparse (index, weight) list.
type Snapshot struct {
	Mode       string           `json:"mode"`
	Dim        int              `json:"dim"`
	Vocabulary map[string]int   `json:"vocabulary"`
	Documents  []DocumentRecord `json:"documents"`
	BuiltAt    time.Time        `json:"built_at"`
}

// SnapshotStore persists and restores index snapshots.
type SnapshotStore interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}
