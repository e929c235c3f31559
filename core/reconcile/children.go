package reconcile

import (
	"encoding/json"
	"fmt"
)

// ChildRelation describes an ordered, pull-only child collection nested in the
// parent document as a list of descriptors.
type ChildRelation struct {
	// RemoteKey is the list key in the parent document (e.g. "photos").
	RemoteKey string

	// RefField receives a descriptor given as a bare reference string.
	RefField string

	// KeyFields are the descriptor keys tried, in order, for the correlation key.
	KeyFields []string

	// Table converts the inline attributes of object descriptors. Only its pull directives are used.
	Table *Table
}

// NewChildRelation builds a ChildRelation. Without keyFields the correlation key is "uuid".
func NewChildRelation(remoteKey, refField string, table *Table, keyFields ...string) *ChildRelation {
	if len(keyFields) == 0 {
		keyFields = []string{"uuid"}
	}
	return &ChildRelation{RemoteKey: remoteKey, RefField: refField, KeyFields: keyFields, Table: table}
}

// ChildDescriptor is one remote child, in remote order.
type ChildDescriptor struct {
	Key    string
	Fields Fields
}

// Descriptors extracts the remote child list from doc.
// present is false when the document carries no list at all; an explicit empty
// list is present and empties the collection.
func (r *ChildRelation) Descriptors(doc Document) (descs []ChildDescriptor, present bool, fieldErrs []*FieldTypeError, err error) {
	raw, ok := documentKey(r.RemoteKey)(doc)
	if !ok {
		return nil, false, nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, true, nil, fmt.Errorf("%s: expected a list, got %T", r.RemoteKey, raw)
	}

	descs = make([]ChildDescriptor, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			if v == "" {
				return nil, true, nil, fmt.Errorf("%s[%d]: empty reference", r.RemoteKey, i)
			}
			fields := Fields{}
			if r.RefField != "" {
				fields[r.RefField] = v
			}
			descs = append(descs, ChildDescriptor{Key: v, Fields: fields})

		case map[string]any:
			obj := Document(v)
			key, ok := r.correlationKey(obj)
			if !ok {
				return nil, true, nil, fmt.Errorf("%s[%d]: no correlation key in %v", r.RemoteKey, i, r.KeyFields)
			}
			var fields Fields
			if r.Table != nil {
				var errs []*FieldTypeError
				fields, errs = r.Table.Pull(obj)
				for _, fe := range errs {
					fe.Key = fmt.Sprintf("%s[%d].%s", r.RemoteKey, i, fe.Key)
					fieldErrs = append(fieldErrs, fe)
				}
			} else {
				fields = Fields{}
			}
			descs = append(descs, ChildDescriptor{Key: key, Fields: fields})

		default:
			return nil, true, nil, fmt.Errorf("%s[%d]: unsupported descriptor %T", r.RemoteKey, i, item)
		}
	}
	return descs, true, fieldErrs, nil
}

func (r *ChildRelation) correlationKey(obj Document) (string, bool) {
	for _, k := range r.KeyFields {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v, true
			}
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}

// ChildActionType is the kind of change applied to one child row.
type ChildActionType string

const (
	// ChildDelete removes a local child absent from the remote list.
	ChildDelete ChildActionType = "delete"
	// ChildUpdate rewrites a matching local child in place, including its position.
	ChildUpdate ChildActionType = "update"
	// ChildInsert creates a child for a new remote descriptor.
	ChildInsert ChildActionType = "insert"
)

// ChildAction is one planned change. ID is set for delete and update.
type ChildAction struct {
	Type     ChildActionType
	ID       uint
	Key      string
	Position int
	Fields   Fields
}

// ChildSummary provides aggregate counts for a child plan.
type ChildSummary struct {
	Total     int `json:"total"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Reordered int `json:"reordered"`
}

// ChildPlan is the full set of changes that turns the local collection into the remote one.
// Deletes come first, then updates and inserts in remote order.
type ChildPlan struct {
	Actions []ChildAction
	Summary ChildSummary
}

// Order returns the child keys in their final order.
func (p *ChildPlan) Order() []string {
	var keys []string
	for _, a := range p.Actions {
		if a.Type != ChildDelete {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// PlanChildren diffs the current children against the remote list.
// Children are matched by key; positions are never used for matching. The remote
// index becomes each child's position. A remote list that names the same key
// twice cannot be applied and returns an error.
func PlanChildren(current []ChildRef, target []ChildDescriptor) (*ChildPlan, error) {
	// the first row for a key wins; later duplicates are deleted
	byKey := make(map[string]ChildRef, len(current))
	for _, c := range current {
		if _, dup := byKey[c.Key]; !dup {
			byKey[c.Key] = c
		}
	}

	wanted := make(map[string]struct{}, len(target))
	for i, d := range target {
		if d.Key == "" {
			return nil, fmt.Errorf("descriptor %d has an empty key", i)
		}
		if _, dup := wanted[d.Key]; dup {
			return nil, fmt.Errorf("key %q appears more than once in the remote list", d.Key)
		}
		wanted[d.Key] = struct{}{}
	}

	plan := &ChildPlan{}

	for _, c := range current {
		if _, keep := wanted[c.Key]; keep && byKey[c.Key].ID == c.ID {
			continue
		}
		plan.Actions = append(plan.Actions, ChildAction{Type: ChildDelete, ID: c.ID, Key: c.Key})
		plan.Summary.Deleted++
	}

	for pos, d := range target {
		if c, ok := byKey[d.Key]; ok {
			plan.Actions = append(plan.Actions, ChildAction{Type: ChildUpdate, ID: c.ID, Key: d.Key, Position: pos, Fields: d.Fields})
			plan.Summary.Updated++
			if c.Order != pos {
				plan.Summary.Reordered++
			}
			continue
		}
		plan.Actions = append(plan.Actions, ChildAction{Type: ChildInsert, Key: d.Key, Position: pos, Fields: d.Fields})
		plan.Summary.Inserted++
	}
	plan.Summary.Total = len(target)

	return plan, nil
}
