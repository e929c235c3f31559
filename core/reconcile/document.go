package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeDocument reads one JSON object, keeping numbers as json.Number.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to decode document: expected an object, got %T", raw)
	}
	return Document(obj), nil
}

// ParseDocument is DecodeDocument over a byte slice.
func ParseDocument(data []byte) (Document, error) {
	return DecodeDocument(bytes.NewReader(data))
}
