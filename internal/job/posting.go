// Package job defines the posting model shared by sources, the classifier
// and the reporting sinks.
package job

import "strings"

// Posting is one raw job offer as collected from a source. The JSON tags
// match the layout of postings files and of the dump/backup formats.
type Posting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
	Posted      string `json:"posted_date,omitempty"`
}

// Key returns the identity used for cross-run deduplication. Postings for the
// same title at the same company are considered the same offer regardless of
// which source or URL they arrived through.
func (p Posting) Key() string {
	company := strings.ToLower(strings.TrimSpace(p.Company))
	title := strings.ToLower(strings.TrimSpace(p.Title))
	return company + "|" + title
}
