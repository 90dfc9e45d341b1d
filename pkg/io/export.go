package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/render"
)

// WriteJSON encodes the imported data of g as a lineage document. Derived
// state (positions, expand state, trace flags) is not included; the output
// can be re-imported with [ReadJSON] and builds the same graph.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Export()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML is the YAML counterpart of [WriteJSON].
func WriteYAML(g *graph.Graph, w io.Writer) error {
	data, err := json.Marshal(g.Export())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes g in the given format.
func Write(g *graph.Graph, w io.Writer, f Format) error {
	if f == FormatYAML {
		return WriteYAML(g, w)
	}
	return WriteJSON(g, w)
}

// Export writes g to path, choosing the format by extension.
func Export(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f, FormatFromPath(path))
}

// WriteView encodes a render-ready view as JSON, including positions,
// handles, anchors and trace flags.
func WriteView(v *render.View, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	return nil
}

// ReadView decodes a view written by [WriteView] and resolves its edge
// references.
func ReadView(r io.Reader) (*render.View, error) {
	var v render.View
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	v.Link()
	return &v, nil
}
