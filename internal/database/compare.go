package database

import "slices"

// Comparison describes how the issues of a document changed between two runs.
type Comparison struct {
	Previous *Run `json:"previous"`
	Current  *Run `json:"current"`

	// SameInput is true when both runs were built from identical preflight bytes.
	SameInput bool `json:"same_input"`

	NewWarnings      []string `json:"new_warnings"`
	ResolvedWarnings []string `json:"resolved_warnings"`
	NewErrors        []string `json:"new_errors"`
	ResolvedErrors   []string `json:"resolved_errors"`
}

// HasChanges reports whether any issue appeared or disappeared.
func (c *Comparison) HasChanges() bool {
	return len(c.NewWarnings)+len(c.ResolvedWarnings)+len(c.NewErrors)+len(c.ResolvedErrors) > 0
}

// CompareRuns compares the issue messages of two runs of the same document.
// Messages are compared as multisets: a message reported twice in prev and
// once in cur counts as one resolved occurrence.
func CompareRuns(prev, cur *Run) *Comparison {
	c := &Comparison{
		Previous:  prev,
		Current:   cur,
		SameInput: prev.InputDigest != "" && prev.InputDigest == cur.InputDigest,
	}
	c.NewWarnings, c.ResolvedWarnings = diffMessages(prev.Warnings, cur.Warnings)
	c.NewErrors, c.ResolvedErrors = diffMessages(prev.Errors, cur.Errors)
	return c
}

// diffMessages returns the messages only in cur and the messages only in
// prev, each in the order of its source list.
func diffMessages(prev, cur []string) (added, removed []string) {
	added, removed = []string{}, []string{}

	remaining := make(map[string]int, len(prev))
	for _, m := range prev {
		remaining[m]++
	}
	for _, m := range cur {
		if remaining[m] > 0 {
			remaining[m]--
			continue
		}
		added = append(added, m)
	}

	for i := len(prev) - 1; i >= 0; i-- {
		m := prev[i]
		if remaining[m] > 0 {
			remaining[m]--
			removed = append(removed, m)
		}
	}
	slices.Reverse(removed)

	return added, removed
}
