package reconcile

import (
	"context"
	"fmt"
	"maps"
)

// Reserved local field names. The engine owns these; directives may not target them.
const (
	FieldID    = "id"
	FieldUUID  = "uuid"
	FieldDraft = "draft"
	FieldDirty = "dirty"
)

// Fields is a merge buffer keyed by local field name.
// A nil value means the field is unset.
type Fields map[string]any

// Clone returns a shallow copy of the buffer.
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// Document is a decoded remote JSON document.
// Numbers are kept as json.Number so integers survive decoding unchanged.
type Document map[string]any

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Direction controls which way a directive moves data.
type Direction int

const (
	// DirectionBoth pulls and pushes the field.
	DirectionBoth Direction = iota
	// DirectionPullOnly only copies the field from remote to local.
	DirectionPullOnly
	// DirectionPushOnly only copies the field from local to remote.
	DirectionPushOnly
)

// Pulls reports whether the direction includes remote to local.
func (d Direction) Pulls() bool {
	return d == DirectionBoth || d == DirectionPullOnly
}

// Pushes reports whether the direction includes local to remote.
func (d Direction) Pushes() bool {
	return d == DirectionBoth || d == DirectionPushOnly
}

func (d Direction) String() string {
	switch d {
	case DirectionBoth:
		return "both"
	case DirectionPullOnly:
		return "pull_only"
	case DirectionPushOnly:
		return "push_only"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ConflictPolicy decides what a pull does with a both-direction field that
// was edited locally and differs on the remote.
type ConflictPolicy string

const (
	// PolicyKeepLocal keeps the local value of a dirty record; the next push sends it.
	PolicyKeepLocal ConflictPolicy = "keep_local"
	// PolicyPreferRemote always takes the remote value.
	PolicyPreferRemote ConflictPolicy = "prefer_remote"
)

// ParseConflictPolicy validates a policy name from configuration.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(s); p {
	case PolicyKeepLocal, PolicyPreferRemote:
		return p, nil
	case "":
		return PolicyKeepLocal, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", s)
	}
}

// Config holds the sync settings loaded by core/config.
type Config struct {
	// ConflictPolicy is keep_local or prefer_remote.
	ConflictPolicy string `mapstructure:"conflict_policy" default:"keep_local"`
	// UntitledText is shown in place of an empty title.
	UntitledText string `mapstructure:"untitled_text" default:"Untitled"`
}

// ChildRef is the stable identity of a locally stored child row.
type ChildRef struct {
	ID    uint
	Key   string
	Order int
}

// Snapshot is the local state of one record at the start of a cycle.
type Snapshot struct {
	ID       uint
	UUID     string
	Draft    bool
	Dirty    bool
	Fields   Fields
	Children []ChildRef
}

// Commit is the complete result of a cycle, written by Store.Commit in one transaction.
// Draft is always cleared.
type Commit struct {
	ID   uint
	UUID string

	// Fields replaces the record's synchronized fields. Nil leaves them untouched.
	Fields Fields

	// Children is applied to the child collection. Nil leaves it untouched.
	Children *ChildPlan

	// ClearDirty marks local edits as published.
	ClearDirty bool
}

// Store is the local storage collaborator.
type Store interface {
	// Snapshot loads the record and its ordered children.
	// It returns ErrNotFound when no record has the uuid.
	Snapshot(ctx context.Context, uuid string) (*Snapshot, error)

	// Commit applies c atomically: readers see either all of it or none of it.
	// A failure while applying c.Children should be reported as *ChildReconcileError.
	Commit(ctx context.Context, c Commit) error
}

// Remote is the network collaborator.
type Remote interface {
	// FetchDocument returns the remote document for uuid.
	FetchDocument(ctx context.Context, uuid string) (Document, error)

	// SubmitDocument publishes doc for uuid.
	SubmitDocument(ctx context.Context, uuid string, doc Document) error
}

// Conflict records a both-direction field whose local and remote values diverged
// on a record with unpublished local edits.
type Conflict struct {
	Field     string `json:"field"`
	RemoteKey string `json:"remote_key"`
	Local     any    `json:"local"`
	Remote    any    `json:"remote"`
	// Kept is true when the local value was kept.
	Kept bool `json:"kept"`
}

// Result describes one completed cycle.
type Result struct {
	UUID      string `json:"uuid"`
	Direction string `json:"direction"`

	// Applied lists local fields written from the remote (pull) or remote keys sent (push).
	Applied []string `json:"applied"`

	// Conflicts lists diverged both-direction fields.
	Conflicts []Conflict `json:"conflicts,omitempty"`

	// FieldErrors lists fields skipped because their value could not be converted.
	FieldErrors []*FieldTypeError `json:"-"`

	// Children summarizes the child collection changes; nil when the remote had no list.
	Children *ChildSummary `json:"children,omitempty"`
}
