package reconcile

import (
	"fmt"
	"slices"
)

// Directive maps one local field to one remote JSON key.
type Directive struct {
	LocalField string
	RemoteKey  string
	Type       ValueType
	Direction  Direction
}

// Field declares a directive that syncs in both directions.
func Field(local, remote string, t ValueType) Directive {
	return Directive{LocalField: local, RemoteKey: remote, Type: t, Direction: DirectionBoth}
}

// PullOnly declares a directive that only copies remote values locally.
func PullOnly(local, remote string, t ValueType) Directive {
	return Directive{LocalField: local, RemoteKey: remote, Type: t, Direction: DirectionPullOnly}
}

// PushOnly declares a directive that only publishes local values.
func PushOnly(local, remote string, t ValueType) Directive {
	return Directive{LocalField: local, RemoteKey: remote, Type: t, Direction: DirectionPushOnly}
}

// Source is a named, ordered group of directives, such as a shared mixin.
type Source struct {
	Name       string
	Directives []Directive
}

// Mixin builds a Source.
func Mixin(name string, directives ...Directive) Source {
	return Source{Name: name, Directives: directives}
}

// Override records that a later source replaced a directive.
type Override struct {
	LocalField string
	Replaced   string
	By         string
}

// Table is an immutable directive table for one record type.
type Table struct {
	name       string
	directives []Directive
	origins    []string
	index      map[string]int
	overrides  []Override
}

// Compose builds a table from sources in order.
// A directive for a local field already present replaces the earlier one in place,
// so the later source wins and the table order stays that of first declaration.
// Duplicate local fields within one source, reserved fields and unknown value
// types are rejected.
func Compose(name string, sources ...Source) (*Table, error) {
	t := &Table{name: name, index: make(map[string]int)}

	for _, src := range sources {
		seen := make(map[string]struct{}, len(src.Directives))
		for _, d := range src.Directives {
			if err := validateDirective(d); err != nil {
				return nil, fmt.Errorf("table %s, source %s: %w", name, src.Name, err)
			}
			if _, dup := seen[d.LocalField]; dup {
				return nil, fmt.Errorf("table %s, source %s: duplicate directive for field %q", name, src.Name, d.LocalField)
			}
			seen[d.LocalField] = struct{}{}

			if i, exists := t.index[d.LocalField]; exists {
				t.overrides = append(t.overrides, Override{
					LocalField: d.LocalField,
					Replaced:   t.origins[i],
					By:         src.Name,
				})
				t.directives[i] = d
				t.origins[i] = src.Name
				continue
			}
			t.index[d.LocalField] = len(t.directives)
			t.directives = append(t.directives, d)
			t.origins = append(t.origins, src.Name)
		}
	}

	if err := t.checkRemoteKeys(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustCompose is like Compose but panics on error. Use it for tables built at init.
func MustCompose(name string, sources ...Source) *Table {
	t, err := Compose(name, sources...)
	if err != nil {
		panic(err)
	}
	return t
}

func validateDirective(d Directive) error {
	switch d.LocalField {
	case "":
		return fmt.Errorf("directive for remote key %q has no local field", d.RemoteKey)
	case FieldID, FieldUUID, FieldDraft, FieldDirty:
		return fmt.Errorf("field %q is reserved", d.LocalField)
	}
	if d.RemoteKey == "" {
		return fmt.Errorf("field %q has no remote key", d.LocalField)
	}
	if _, ok := codecs[d.Type]; !ok {
		return fmt.Errorf("field %q: %w %q", d.LocalField, errUnknownType, d.Type)
	}
	if d.Direction < DirectionBoth || d.Direction > DirectionPushOnly {
		return fmt.Errorf("field %q: invalid %s", d.LocalField, d.Direction)
	}
	return nil
}

// checkRemoteKeys rejects two local fields that would both read or write one remote key.
func (t *Table) checkRemoteKeys() error {
	owners := make(map[string]string, len(t.directives))
	for _, d := range t.directives {
		if other, ok := owners[d.RemoteKey]; ok {
			return fmt.Errorf("table %s: fields %q and %q share remote key %q", t.name, other, d.LocalField, d.RemoteKey)
		}
		owners[d.RemoteKey] = d.LocalField
	}
	return nil
}

// Name returns the record type name.
func (t *Table) Name() string { return t.name }

// Directives returns all directives in table order.
func (t *Table) Directives() []Directive { return slices.Clone(t.directives) }

// Lookup returns the directive targeting a local field.
func (t *Table) Lookup(local string) (Directive, bool) {
	i, ok := t.index[local]
	if !ok {
		return Directive{}, false
	}
	return t.directives[i], true
}

// Origin returns the name of the source that supplied the directive for a local field.
func (t *Table) Origin(local string) string {
	if i, ok := t.index[local]; ok {
		return t.origins[i]
	}
	return ""
}

// Overrides lists every replacement made during composition, in order.
func (t *Table) Overrides() []Override { return slices.Clone(t.overrides) }

// FieldsForPull returns the pull-only and both-direction directives in table order.
func (t *Table) FieldsForPull() []Directive {
	return t.filter(Direction.Pulls)
}

// FieldsForPush returns the push-only and both-direction directives in table order.
func (t *Table) FieldsForPush() []Directive {
	return t.filter(Direction.Pushes)
}

func (t *Table) filter(keep func(Direction) bool) []Directive {
	out := make([]Directive, 0, len(t.directives))
	for _, d := range t.directives {
		if keep(d.Direction) {
			out = append(out, d)
		}
	}
	return out
}

// Pull stages every pull directive present in doc.
// The returned buffer holds converted values only for keys the document supplied.
// A value that fails conversion is reported and skipped; the other directives still run.
func (t *Table) Pull(doc Document) (Fields, []*FieldTypeError) {
	staged := Fields{}
	var errs []*FieldTypeError
	for _, d := range t.FieldsForPull() {
		if _, err := MergePresent(doc, staged, documentKey(d.RemoteKey), decodeInto(d.LocalField, d.Type)); err != nil {
			errs = append(errs, &FieldTypeError{Key: d.RemoteKey, Type: d.Type, Value: doc[d.RemoteKey], Err: err})
		}
	}
	return staged, errs
}

// Push builds the outgoing document from every push directive.
// Unset local values are omitted, never sent as null.
func (t *Table) Push(fields Fields) (Document, []*FieldTypeError) {
	doc := Document{}
	var errs []*FieldTypeError
	for _, d := range t.FieldsForPush() {
		if _, err := MergePresent(fields, doc, fieldKey(d.LocalField), encodeInto(d.RemoteKey, d.Type)); err != nil {
			errs = append(errs, &FieldTypeError{Key: d.RemoteKey, Type: d.Type, Value: fields[d.LocalField], Err: err})
		}
	}
	return doc, errs
}
