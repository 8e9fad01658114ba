package draft

// Summary is a draft's listing projection without content or sources.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	UpdatedAt   int64  `json:"updatedAt"`
	WordCount   int    `json:"wordCount"`
	SourceCount int    `json:"sourceCount"`
	Excerpt     string `json:"excerpt"`
}

// ToSummary strips content and sources from a record.
func (f Full) ToSummary() Summary {
	return Summary{
		ID:          f.ID,
		Title:       f.Title,
		UpdatedAt:   f.UpdatedAt,
		WordCount:   f.WordCount,
		SourceCount: f.SourceCount,
		Excerpt:     f.Excerpt,
	}
}

// DisplayTitle returns the title, or a placeholder for untitled drafts.
func (s Summary) DisplayTitle() string {
	if s.Title == "" {
		return "Untitled draft"
	}
	return s.Title
}
