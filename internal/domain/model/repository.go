package model

import (
	"fmt"
	"strings"
)

// RepositoryRef identifies a tracked repository target. Branch may be empty,
// in which case the repository's default branch is resolved at fetch time.
type RepositoryRef struct {
	Owner  string
	Name   string
	Branch string
}

// IsValid reports whether the ref has both an owner and a name. Invalid refs
// are skipped during a check cycle rather than surfaced as errors.
func (r RepositoryRef) IsValid() bool {
	return r.Owner != "" && r.Name != ""
}

// FullName returns the "owner/name" display form of the ref.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepositoryRef splits an "owner/name" string into a RepositoryRef with
// no explicit branch.
func ParseRepositoryRef(fullName string) (RepositoryRef, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf("invalid repository %q: expected owner/name", fullName)
	}
	return RepositoryRef{Owner: parts[0], Name: parts[1]}, nil
}

// RepositoryMetadata holds read-only repository details fetched on demand.
type RepositoryMetadata struct {
	Owner         string
	Name          string
	HTMLURL       string
	DefaultBranch string
}

// FullName returns the "owner/name" display form of the repository.
func (m RepositoryMetadata) FullName() string {
	return m.Owner + "/" + m.Name
}
