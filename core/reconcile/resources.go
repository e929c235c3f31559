package reconcile

import (
	"fmt"

	"postcard-sync/core/utils"
)

// ResourcesKey is the remote key of the derived-asset sub-document.
const ResourcesKey = "_resources"

// ResourceField maps one derived asset of the sub-document to a local field.
// TypeKey and TypeField optionally pair the asset with its mime type.
type ResourceField struct {
	RemoteKey  string
	LocalField string
	TypeKey    string
	TypeField  string
}

// ResourceSet merges a derived-asset sub-document. All its fields are pull only.
type ResourceSet struct {
	Key    string
	Fields []ResourceField
}

// NewResourceSet builds a ResourceSet read from the "_resources" key.
func NewResourceSet(fields ...ResourceField) *ResourceSet {
	return &ResourceSet{Key: ResourcesKey, Fields: fields}
}

// LocalFields returns every local field the set may write.
func (r *ResourceSet) LocalFields() []string {
	var out []string
	for _, f := range r.Fields {
		out = append(out, f.LocalField)
		if f.TypeField != "" {
			out = append(out, f.TypeField)
		}
	}
	return out
}

// Merge copies every asset the sub-document supplies into buf and returns the
// local fields written. Absent assets keep their local value; an absent
// sub-document is a no-op.
//
// An asset is either a string or an object {"url": ..., "mime_type": ...}.
// The object's mime_type fills the paired type field unless the sub-document
// carries the explicit type key.
func (r *ResourceSet) Merge(doc Document, buf Fields) ([]string, []*FieldTypeError) {
	raw, ok := documentKey(r.Key)(doc)
	if !ok {
		return nil, nil
	}
	sub, ok := asDocument(raw)
	if !ok {
		return nil, []*FieldTypeError{{
			Key:   r.Key,
			Type:  "object",
			Value: raw,
			Err:   fmt.Errorf("%w: %T", utils.ErrUnsupportedType, raw),
		}}
	}

	var (
		applied []string
		errs    []*FieldTypeError
	)
	for _, f := range r.Fields {
		wrote, err := MergePresent(sub, buf, documentKey(f.RemoteKey), r.assetInto(sub, f))
		if err != nil {
			errs = append(errs, &FieldTypeError{Key: r.Key + "." + f.RemoteKey, Type: TypeString, Value: sub[f.RemoteKey], Err: err})
		} else if wrote {
			applied = append(applied, f.LocalField)
		}

		if f.TypeKey == "" || f.TypeField == "" {
			continue
		}
		wrote, err = MergePresent(sub, buf, documentKey(f.TypeKey), decodeInto(f.TypeField, TypeString))
		if err != nil {
			errs = append(errs, &FieldTypeError{Key: r.Key + "." + f.TypeKey, Type: TypeString, Value: sub[f.TypeKey], Err: err})
		} else if wrote {
			applied = append(applied, f.TypeField)
		}
	}
	return applied, errs
}

// assetInto writes an asset value that is a plain reference or an object with a url.
func (r *ResourceSet) assetInto(sub Document, f ResourceField) Mutator[Fields] {
	return func(dst Fields, raw any) error {
		obj, isObject := asDocument(raw)
		if !isObject {
			s, err := utils.ToString(raw)
			if err != nil {
				return err
			}
			dst[f.LocalField] = s
			return nil
		}

		url, ok := documentKey("url")(obj)
		if !ok {
			return fmt.Errorf("asset object has no url")
		}
		s, err := utils.ToString(url)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}

		var mime string
		fillType := false
		if _, explicit := documentKey(f.TypeKey)(sub); f.TypeField != "" && (f.TypeKey == "" || !explicit) {
			if rawMime, ok := documentKey("mime_type")(obj); ok {
				if mime, err = utils.ToString(rawMime); err != nil {
					return fmt.Errorf("mime_type: %w", err)
				}
				fillType = true
			}
		}

		dst[f.LocalField] = s
		if fillType {
			dst[f.TypeField] = mime
		}
		return nil
	}
}

func asDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	default:
		return nil, false
	}
}
