// Package changelog reads recent commits from a local git repository.
package changelog

// ChangeRecord is one commit as reported by git log.
type ChangeRecord struct {
	Summary   string
	Timestamp string
	Author    string
}
