package domain

// SchemaVersion is the version tag written when a document is first
// initialized. It is not validated on load.
const SchemaVersion = "1.0"

// Document is the whole persisted collection: a version tag plus the
// ordered task list. On-disk order preserves arrival order but carries no
// other meaning; queries sort a filtered copy, never the stored sequence.
type Document struct {
	Version string  `json:"version"`
	Tasks   []*Task `json:"tasks"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version: SchemaVersion,
		Tasks:   []*Task{},
	}
}

// MaxID returns the highest task id in the document, or 0 when empty.
func (d *Document) MaxID() int {
	max := 0
	for _, t := range d.Tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}
