package domain

import "time"

// Document is one help-centre article as produced by a DocumentSource.
type Document struct {
	// ID is the stable article identifier, unique within the corpus.
	ID string

	// Title is the human-readable article title.
	Title string

	// Content is the markdown payload. It is the sole input to change
	// detection; two documents with equal content are equal for sync
	// purposes.
	Content string

	// URL is the public location of the article, if known.
	URL string

	// UpdatedAt is the source-reported modification time. It is metadata
	// only: source clocks are not trusted for change detection.
	UpdatedAt time.Time
}

// Decision classifies a document against the manifest.
type Decision int

const (
	// DecisionNew indicates the document has no tracking record.
	DecisionNew Decision = iota

	// DecisionUpdated indicates the content hash differs from the record.
	DecisionUpdated

	// DecisionUnchanged indicates the content hash matches the record.
	DecisionUnchanged
)

// String returns the lowercase name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionNew:
		return "new"
	case DecisionUpdated:
		return "updated"
	case DecisionUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}
