package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// insertBatchSize caps the number of rows per multi-value INSERT.
const insertBatchSize = 500

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vocabulary (
	term TEXT PRIMARY KEY,
	idx  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	doc_id INTEGER PRIMARY KEY,
	label  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS weights (
	doc_id   INTEGER NOT NULL,
	term_idx INTEGER NOT NULL,
	weight   REAL    NOT NULL,
	PRIMARY KEY (doc_id, term_idx)
);
`

// SQLiteStore implements SnapshotStore on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the snapshot database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db %s: %w", dbPath, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored snapshot inside a single transaction.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "vocabulary", "documents", "weights"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"mode":     snap.Mode,
		"dim":      fmt.Sprintf("%d", snap.Dim),
		"built_at": snap.BuiltAt.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to store meta %s: %w", key, err)
		}
	}

	if err := batchInsert(tx, "INSERT INTO vocabulary (term, idx) VALUES %s", 2, len(snap.Vocabulary), func(add func(args ...any)) {
		for term, idx := range snap.Vocabulary {
			add(term, idx)
		}
	}); err != nil {
		return err
	}

	if err := batchInsert(tx, "INSERT INTO documents (doc_id, label) VALUES %s", 2, len(snap.Documents), func(add func(args ...any)) {
		for _, doc := range snap.Documents {
			add(doc.ID, doc.Label)
		}
	}); err != nil {
		return err
	}

	nWeights := 0
	for _, doc := range snap.Documents {
		nWeights += len(doc.Terms)
	}
	if err := batchInsert(tx, "INSERT INTO weights (doc_id, term_idx, weight) VALUES %s", 3, nWeights, func(add func(args ...any)) {
		for _, doc := range snap.Documents {
			for _, tw := range doc.Terms {
				add(doc.ID, tw.Index, tw.Weight)
			}
		}
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. Documents come back ordered by doc_id and
// weights by term index, matching the ordering Save received.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	snap := &Snapshot{Vocabulary: make(map[string]int)}

	metaRows, err := s.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("failed to read meta: %w", err)
	}
	defer metaRows.Close()
	found := false
	for metaRows.Next() {
		var key, value string
		if err := metaRows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta: %w", err)
		}
		found = true
		switch key {
		case "mode":
			snap.Mode = value
		case "dim":
			if dim, err := strconv.Atoi(value); err == nil {
				snap.Dim = dim
			}
		case "built_at":
			snap.BuiltAt, _ = time.Parse(time.RFC3339Nano, value)
		}
	}
	if err := metaRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meta: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no snapshot stored")
	}

	vocabRows, err := s.db.Query("SELECT term, idx FROM vocabulary")
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	defer vocabRows.Close()
	for vocabRows.Next() {
		var term string
		var idx int
		if err := vocabRows.Scan(&term, &idx); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary: %w", err)
		}
		snap.Vocabulary[term] = idx
	}
	if err := vocabRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vocabulary: %w", err)
	}

	docRows, err := s.db.Query("SELECT doc_id, label FROM documents ORDER BY doc_id")
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	defer docRows.Close()
	byID := make(map[int]int)
	for docRows.Next() {
		var doc DocumentRecord
		if err := docRows.Scan(&doc.ID, &doc.Label); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		byID[doc.ID] = len(snap.Documents)
		snap.Documents = append(snap.Documents, doc)
	}
	if err := docRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	weightRows, err := s.db.Query("SELECT doc_id, term_idx, weight FROM weights ORDER BY doc_id, term_idx")
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	defer weightRows.Close()
	for weightRows.Next() {
		var docID int
		var tw TermWeight
		if err := weightRows.Scan(&docID, &tw.Index, &tw.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		pos, ok := byID[docID]
		if !ok {
			return nil, fmt.Errorf("weight references unknown document %d", docID)
		}
		snap.Documents[pos].Terms = append(snap.Documents[pos].Terms, tw)
	}
	if err := weightRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weights: %w", err)
	}

	return snap, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// batchInsert issues multi-value INSERTs in chunks of insertBatchSize rows.
func batchInsert(tx *sql.Tx, stmtFormat string, arity, total int, fill func(add func(args ...any))) error {
	if total == 0 {
		return nil
	}
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", arity), ", ") + ")"

	var valueStrings []string
	var valueArgs []any
	flush := func() error {
		if len(valueStrings) == 0 {
			return nil
		}
		stmt := fmt.Sprintf(stmtFormat, strings.Join(valueStrings, ", "))
		if _, err := tx.Exec(stmt, valueArgs...); err != nil {
			return fmt.Errorf("failed to execute batch insert: %w", err)
		}
		valueStrings = nil
		valueArgs = nil
		return nil
	}

	var flushErr error
	fill(func(args ...any) {
		if flushErr != nil {
			return
		}
		valueStrings = append(valueStrings, placeholder)
		valueArgs = append(valueArgs, args...)
		if len(valueStrings) == insertBatchSize {
			flushErr = flush()
		}
	})
	if flushErr != nil {
		return flushErr
	}
	return flush()
}
