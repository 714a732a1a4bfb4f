package model

// TrackedState maps a "owner/name/branch" key to the most recently persisted
// tip commit for that branch. The key always uses the effective, resolved
// branch name, never a placeholder. At most one entry exists per
// (owner, name, branch) triple; entries are overwritten on change, never
// deleted.
type TrackedState map[string]CommitSnapshot

// StateKey builds the TrackedState key for a repository and its effective
// branch.
func StateKey(owner, name, branch string) string {
	return owner + "/" + name + "/" + branch
}

// RepoStatus is one row of the per-repository status listing. HasData is
// false when no snapshot has been persisted for the repository yet.
type RepoStatus struct {
	Owner   string
	Name    string
	Branch  string
	SHA     string
	Date    string
	HasData bool
}

// FullName returns the "owner/name" display form of the status row.
func (s RepoStatus) FullName() string {
	return s.Owner + "/" + s.Name
}
