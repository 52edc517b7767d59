package catalog

// Credit is one cast or crew entry, decoded once at ingestion. Job is empty
// for cast members.
type Credit struct {
	Name string `json:"name"`
	Job  string `json:"job,omitempty"`
}

// Movie is one catalog record with the metadata used for similarity.
type Movie struct {
	ID       int
	Title    string
	Overview string
	Genres   []string
	Keywords []string
	Cast     []Credit
	Crew     []Credit
}

// Director returns the crew member with the Director job, if any.
func (m *Movie) Director() (string, bool) {
	for _, c := range m.Crew {
		if c.Job == "Director" {
			return c.Name, true
		}
	}
	return "", false
}
