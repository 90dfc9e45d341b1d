package graph

import (
	"encoding/json"
	"maps"
	"slices"
)

// Payload carries the fields of an imported record that the engine does not
// interpret. Values are kept as raw JSON so they pass through unaltered.
type Payload map[string]json.RawMessage

// Clone returns a deep copy of p. The result is nil when p is empty.
func (p Payload) Clone() Payload {
	if len(p) == 0 {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = slices.Clone(v)
	}
	return out
}

// Get decodes the value stored under key into v. It reports false when the
// key is absent or the value does not decode into v.
func (p Payload) Get(key string, v any) bool {
	raw, ok := p[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Keys returns the payload keys in sorted order.
func (p Payload) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}
