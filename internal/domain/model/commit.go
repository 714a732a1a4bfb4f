// Package model contains the domain types shared across the application.
package model

// CommitSnapshot is an immutable record of a branch's tip commit at
// observation time. The JSON tags define the persisted state document
// format, so they must stay stable across releases.
type CommitSnapshot struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// ShortSHA returns the first 7 characters of the commit hash for display.
func (c CommitSnapshot) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}
