package model

import "time"

// SnapshotStatus distinguishes a legitimately empty catalog from a store that
// could not be reached. Both render zero grounded names, so downstream code
// needs the discriminant to pick the right fallback message.
type SnapshotStatus int

const (
	SnapshotOK SnapshotStatus = iota
	SnapshotEmpty
	SnapshotUnavailable
)

// ContextEntry is one catalog entry as parsed back out of a snapshot's
// rendered text. The validator builds its deterministic fallback from these.
type ContextEntry struct {
	Name        string
	Description string
	Location    string
}

// CatalogSnapshot is an immutable, timestamped rendering of the catalog into
// model-consumable text. Names holds exactly the set of entry names grounded
// by the text; replaced wholesale on refresh, never mutated.
type CatalogSnapshot struct {
	Text      string
	Names     []string
	Entries   []ContextEntry
	Status    SnapshotStatus
	Category  string
	CreatedAt time.Time
}

// Age returns how long ago the snapshot was rendered.
func (s *CatalogSnapshot) Age() time.Duration {
	return time.Since(s.CreatedAt)
}
