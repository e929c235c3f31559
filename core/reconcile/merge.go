package reconcile

// Accessor reads one value from src and reports whether it is present.
type Accessor[S any] func(src S) (any, bool)

// Mutator writes v into dst.
type Mutator[D any] func(dst D, v any) error

// MergePresent copies the value read by get into dst through set.
// An absent value leaves dst untouched and reports false.
func MergePresent[S, D any](src S, dst D, get Accessor[S], set Mutator[D]) (bool, error) {
	v, ok := get(src)
	if !ok {
		return false, nil
	}
	if err := set(dst, v); err != nil {
		return false, err
	}
	return true, nil
}

// documentKey reads key from a remote document. JSON null counts as absent.
func documentKey(key string) Accessor[Document] {
	return func(doc Document) (any, bool) {
		v, ok := doc[key]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

// fieldKey reads a local field. Nil counts as unset.
func fieldKey(name string) Accessor[Fields] {
	return func(f Fields) (any, bool) {
		v, ok := f[name]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

// decodeInto converts a remote value with t and stores it under a local field.
func decodeInto(field string, t ValueType) Mutator[Fields] {
	return func(dst Fields, raw any) error {
		v, err := Decode(t, raw)
		if err != nil {
			return err
		}
		dst[field] = v
		return nil
	}
}

// encodeInto converts a local value with t and stores it under a remote key.
func encodeInto(key string, t ValueType) Mutator[Document] {
	return func(dst Document, local any) error {
		v, err := Encode(t, local)
		if err != nil {
			return err
		}
		dst[key] = v
		return nil
	}
}
