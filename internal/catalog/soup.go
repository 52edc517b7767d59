package catalog

import "strings"

// NormalizeTag lowercases a metadata tag and strips its spaces, so
// multi-word names become single tokens ("Tom Hanks" -> "tomhanks") and
// distinct people sharing a first name do not collide on it.
func NormalizeTag(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}

// Soup assembles the metadata token multiset for a movie: up to castLimit
// leading cast names, the director, and all genre and keyword tags, each
// normalized into a single token. castLimit <= 0 means no cast cap.
func Soup(m *Movie, castLimit int) []string {
	cast := m.Cast
	if castLimit > 0 && len(cast) > castLimit {
		cast = cast[:castLimit]
	}

	tokens := make([]string, 0, len(cast)+1+len(m.Genres)+len(m.Keywords))
	for _, c := range cast {
		if tag := NormalizeTag(c.Name); tag != "" {
			tokens = append(tokens, tag)
		}
	}
	if director, ok := m.Director(); ok {
		if tag := NormalizeTag(director); tag != "" {
			tokens = append(tokens, tag)
		}
	}
	for _, g := range m.Genres {
		if tag := NormalizeTag(g); tag != "" {
			tokens = append(tokens, tag)
		}
	}
	for _, k := range m.Keywords {
		if tag := NormalizeTag(k); tag != "" {
			tokens = append(tokens, tag)
		}
	}
	return tokens
}
