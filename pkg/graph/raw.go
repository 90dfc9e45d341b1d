package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// RawDocument - Import Format
// =============================================================================

// RawDocument is the node-link document produced by the external loaders:
//
//	{
//	  "nodes": [{"id": "orders", "name": "Orders", "category": "table",
//	             "attributes": [{"name": "id", "dataType": "int", "isPrimaryKey": true}]}],
//	  "links": [{"source": "orders", "target": "revenue", "type": "aggregate",
//	             "sourceAttr": "amount", "targetAttr": "total"}]
//	}
//
// Decoding is tolerant: "edges" is accepted for "links", and a record that
// cannot be decoded does not fail the document. It is kept with its decode
// error (see [RawNode.Err]) so that [Build] can drop and report it.
type RawDocument struct {
	Nodes []RawNode `json:"nodes"`
	Links []RawLink `json:"links"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *RawDocument) UnmarshalJSON(data []byte) error {
	var aux struct {
		Nodes []json.RawMessage `json:"nodes"`
		Links []json.RawMessage `json:"links"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	links := aux.Links
	if links == nil {
		links = aux.Edges
	}

	out := RawDocument{
		Nodes: make([]RawNode, 0, len(aux.Nodes)),
		Links: make([]RawLink, 0, len(links)),
	}
	for _, raw := range aux.Nodes {
		var n RawNode
		if err := json.Unmarshal(raw, &n); err != nil {
			n = RawNode{err: err}
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, raw := range links {
		var l RawLink
		if err := json.Unmarshal(raw, &l); err != nil {
			l = RawLink{err: err}
		}
		out.Links = append(out.Links, l)
	}
	*d = out
	return nil
}

// =============================================================================
// RawNode
// =============================================================================

// RawNode is one imported node record. Fields the engine does not interpret
// are kept in Extra.
type RawNode struct {
	ID         string
	Name       string
	Category   string
	Schema     string
	Layer      string
	Attributes []RawAttribute
	Extra      Payload

	err error
}

// Err returns the decode error of a record that could not be read.
func (n RawNode) Err() error { return n.err }

// UnmarshalJSON implements json.Unmarshaler.
//
// Accepted aliases: "displayName"/"display_name" for "name", "label" for
// "category", "columns" for "attributes".
func (n *RawNode) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	var out RawNode
	if out.ID, err = decodeID(take(fields, "id")); err != nil {
		return fmt.Errorf("node id: %w", err)
	}
	if out.Name, err = decodeString(take(fields, "name", "displayName", "display_name")); err != nil {
		return fmt.Errorf("node %s: name: %w", out.ID, err)
	}
	if out.Category, err = decodeString(take(fields, "category", "label")); err != nil {
		return fmt.Errorf("node %s: category: %w", out.ID, err)
	}
	if out.Schema, err = decodeString(take(fields, "schema")); err != nil {
		return fmt.Errorf("node %s: schema: %w", out.ID, err)
	}
	if out.Layer, err = decodeString(take(fields, "layer")); err != nil {
		return fmt.Errorf("node %s: layer: %w", out.ID, err)
	}
	if raw := take(fields, "attributes", "columns"); !isNull(raw) {
		if err := json.Unmarshal(raw, &out.Attributes); err != nil {
			return fmt.Errorf("node %s: attributes: %w", out.ID, err)
		}
	}
	if len(fields) > 0 {
		out.Extra = Payload(fields)
	}
	*n = out
	return nil
}

// MarshalJSON implements json.Marshaler. Known fields use their canonical
// names; Extra fields are merged in. Keys are emitted in sorted order.
func (n RawNode) MarshalJSON() ([]byte, error) {
	out := n.Extra.Clone()
	if out == nil {
		out = make(Payload)
	}
	put(out, "id", n.ID, true)
	put(out, "name", n.Name, false)
	put(out, "category", n.Category, false)
	put(out, "schema", n.Schema, false)
	put(out, "layer", n.Layer, false)
	if len(n.Attributes) > 0 {
		data, err := json.Marshal(n.Attributes)
		if err != nil {
			return nil, err
		}
		out["attributes"] = data
	}
	return json.Marshal(map[string]json.RawMessage(out))
}

// =============================================================================
// RawAttribute
// =============================================================================

// RawAttribute is one imported attribute (column) record. A bare string is
// accepted as an attribute with only a name.
type RawAttribute struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType,omitempty"`
	IsPrimaryKey bool   `json:"isPrimaryKey,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Accepted aliases: "attribute_name"/"column_name"/"Field Name" for "name",
// "data_type"/"type"/"Data Type" for "dataType", and
// "is_primary_key"/"primaryKey"/"Primary Key" for "isPrimaryKey".
// Other fields are ignored.
func (a *RawAttribute) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*a = RawAttribute{Name: name}
		return nil
	}

	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out RawAttribute
	if out.Name, err = decodeString(take(fields, "name", "attribute_name", "column_name", "Field Name")); err != nil {
		return fmt.Errorf("attribute name: %w", err)
	}
	if out.DataType, err = decodeString(take(fields, "dataType", "data_type", "type", "Data Type")); err != nil {
		return fmt.Errorf("attribute %s: data type: %w", out.Name, err)
	}
	if out.IsPrimaryKey, err = decodeBool(take(fields, "isPrimaryKey", "is_primary_key", "primaryKey", "Primary Key")); err != nil {
		return fmt.Errorf("attribute %s: primary key: %w", out.Name, err)
	}
	*a = out
	return nil
}

// =============================================================================
// RawLink
// =============================================================================

// RawLink is one imported edge record.
//
// Source and Target arrive either as bare ids or as {"id": ...} objects; both
// decode to the bare id. Attribute endpoints are given explicitly through
// SourceAttr/TargetAttr or through a Map string such as
// "orders.amount -> revenue.total".
type RawLink struct {
	ID         string
	Source     string
	Target     string
	SourceAttr string
	TargetAttr string
	Map        string
	Type       string
	UpdatedAt  string
	Logic      string
	ScriptName string
	Extra      Payload

	err error
}

// Err returns the decode error of a record that could not be read.
func (l RawLink) Err() error { return l.err }

// UnmarshalJSON implements json.Unmarshaler.
func (l *RawLink) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	var out RawLink
	if out.ID, err = decodeID(take(fields, "id")); err != nil {
		return fmt.Errorf("link id: %w", err)
	}
	if out.Source, err = decodeID(take(fields, "source", "from")); err != nil {
		return fmt.Errorf("link %s: source: %w", out.ID, err)
	}
	if out.Target, err = decodeID(take(fields, "target", "to")); err != nil {
		return fmt.Errorf("link %s: target: %w", out.ID, err)
	}

	strs := []struct {
		dst  *string
		keys []string
	}{
		{&out.SourceAttr, []string{"sourceAttr", "source_attr", "sourceColumn", "source_column"}},
		{&out.TargetAttr, []string{"targetAttr", "target_attr", "targetColumn", "target_column"}},
		{&out.Map, []string{"map", "mapping"}},
		{&out.Type, []string{"type", "label", "relationship"}},
		{&out.UpdatedAt, []string{"updated_at", "updatedAt"}},
		{&out.Logic, []string{"logic"}},
		{&out.ScriptName, []string{"script_name", "scriptName"}},
	}
	for _, s := range strs {
		if *s.dst, err = decodeString(take(fields, s.keys...)); err != nil {
			return fmt.Errorf("link %s: %s: %w", out.ID, s.keys[0], err)
		}
	}
	if len(fields) > 0 {
		out.Extra = Payload(fields)
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler. Empty fields other than source and
// target are omitted.
func (l RawLink) MarshalJSON() ([]byte, error) {
	out := l.Extra.Clone()
	if out == nil {
		out = make(Payload)
	}
	put(out, "id", l.ID, false)
	put(out, "source", l.Source, true)
	put(out, "target", l.Target, true)
	put(out, "sourceAttr", l.SourceAttr, false)
	put(out, "targetAttr", l.TargetAttr, false)
	put(out, "map", l.Map, false)
	put(out, "type", l.Type, false)
	put(out, "updated_at", l.UpdatedAt, false)
	put(out, "logic", l.Logic, false)
	put(out, "script_name", l.ScriptName, false)
	return json.Marshal(map[string]json.RawMessage(out))
}

// ParseMapping splits a mapping string of the form
// "Entity.attr -> Entity.attr" into its source and target attribute names.
// Entities may themselves contain dots ("sales.orders.amount"); the attribute
// is the part after the last dot.
func ParseMapping(s string) (sourceAttr, targetAttr string, ok bool) {
	left, right, found := strings.Cut(s, "->")
	if !found {
		return "", "", false
	}
	sourceAttr, ok1 := mappingAttr(left)
	targetAttr, ok2 := mappingAttr(right)
	if !ok1 || !ok2 {
		return "", "", false
	}
	return sourceAttr, targetAttr, true
}

func mappingAttr(side string) (string, bool) {
	side = strings.TrimSpace(side)
	i := strings.LastIndexByte(side, '.')
	if i <= 0 || i == len(side)-1 {
		return "", false
	}
	return strings.TrimSpace(side[i+1:]), true
}

// =============================================================================
// Decoding helpers
// =============================================================================

func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("expected an object, got null")
	}
	return fields, nil
}

// take removes and returns the first present key. Aliases that are not used
// stay in fields and end up in the payload.
func take(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			delete(fields, k)
			return v
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeID accepts a string, a number, or an object carrying an "id" field.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var ref struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			return "", err
		}
		if len(bytes.TrimSpace(ref.ID)) > 0 && bytes.TrimSpace(ref.ID)[0] == '{' {
			return "", fmt.Errorf("nested id objects are not supported")
		}
		return decodeString(ref.ID)
	}
	return decodeString(raw)
}

// decodeString accepts a string or a number; null and absent yield "".
func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[', 't', 'f':
		return "", fmt.Errorf("expected a string, got %s", raw)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", err
	}
	return num.String(), nil
}

func decodeBool(raw json.RawMessage) (bool, error) {
	if isNull(raw) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	s, err := decodeString(raw)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "pk", "x":
		return true, nil
	case "", "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func put(fields Payload, key, value string, always bool) {
	if value == "" && !always {
		return
	}
	data, _ := json.Marshal(value)
	fields[key] = data
}
