package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Columns recognized in the dataset header. The genres, keywords, cast and
// crew cells hold JSON arrays of {name, job?} records; title and overview
// are plain text.
const (
	colTitle    = "title"
	colOverview = "overview"
	colGenres   = "genres"
	colKeywords = "keywords"
	colCast     = "cast"
	colCrew     = "crew"
)

// LoadCSV reads the movie catalog from a CSV file. Document ids are
// assigned by row order, so the same file always yields the same ids.
// Missing or malformed metadata cells degrade to empty values rather than
// failing the whole load.
func LoadCSV(path string) ([]Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses catalog CSV content from a reader.
func Read(r io.Reader) ([]Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return nil, fmt.Errorf("catalog header missing %q column", colTitle)
	}

	var movies []Movie
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", len(movies)+1, err)
		}

		m := Movie{
			ID:       len(movies),
			Title:    cell(record, cols, colTitle),
			Overview: cell(record, cols, colOverview),
			Genres:   names(cell(record, cols, colGenres)),
			Keywords: names(cell(record, cols, colKeywords)),
			Cast:     credits(cell(record, cols, colCast)),
			Crew:     credits(cell(record, cols, colCrew)),
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func cell(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// credits decodes a JSON-encoded list of credit records. Malformed cells
// yield nil.
func credits(raw string) []Credit {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var entries []Credit
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// names decodes a JSON-encoded list of {name} records into the names.
func names(raw string) []string {
	entries := credits(raw)
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			out = append(out, e.Name)
		}
	}
	return out
}
