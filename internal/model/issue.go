package model

// IssueKind tells warnings and errors apart.
type IssueKind int

const (
	// KindWarning marks an issue reported as a preflight warning.
	KindWarning IssueKind = iota

	// KindError marks an issue reported as a preflight error.
	KindError
)

// String returns the lower-case name of the kind.
func (k IssueKind) String() string {
	switch k {
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Label returns the section header used in reports for the kind.
func (k IssueKind) Label() string {
	switch k {
	case KindWarning:
		return "Warnings"
	case KindError:
		return "Errors"
	default:
		return "Issues"
	}
}

// Kinds lists the issue kinds in drawing order.
// Errors come last so that their regions are painted above warnings.
var Kinds = []IssueKind{KindWarning, KindError}

// Issue is one warning or error of the preflight result.
type Issue struct {
	// Message is the human-readable description from the preflight tool.
	Message string `json:"message"`

	// Locations holds the regions that triggered the issue.
	// It may be empty when the issue has no spatial extent.
	Locations []Rect `json:"locations"`
}

// HasLocations reports whether the issue can be drawn on the diagram.
func (i Issue) HasLocations() bool {
	return len(i.Locations) > 0
}
