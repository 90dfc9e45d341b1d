package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Format is a serialization format for lineage documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json or yaml)", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to
// JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

// ReadJSON decodes a lineage document from r.
//
// Only a document that is not a JSON object at all fails; individual
// malformed records are kept with their error so that [graph.Build] can drop
// and report them. ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.RawDocument, error) {
	var doc graph.RawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return graph.RawDocument{}, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode json")
	}
	return doc, nil
}

// ReadYAML decodes a lineage document written in YAML. The document is
// converted to its JSON equivalent first, so the same field aliases and
// tolerance rules apply as for [ReadJSON].
func ReadYAML(r io.Reader) (graph.RawDocument, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if err == io.EOF {
			return graph.RawDocument{}, nil
		}
		return graph.RawDocument{}, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode yaml")
	}
	data, err := json.Marshal(jsonCompatible(v))
	if err != nil {
		return graph.RawDocument{}, errors.Wrap(errors.ErrCodeMalformedInput, err, "convert yaml")
	}
	var doc graph.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return graph.RawDocument{}, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode yaml")
	}
	return doc, nil
}

// Read decodes a document in the given format.
func Read(r io.Reader, f Format) (graph.RawDocument, error) {
	switch f {
	case FormatYAML:
		return ReadYAML(r)
	case FormatJSON, "":
		return ReadJSON(r)
	}
	return graph.RawDocument{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// Import reads the document at path, choosing the format by extension.
func Import(path string) (graph.RawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return graph.RawDocument{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Read(f, FormatFromPath(path))
	if err != nil {
		return graph.RawDocument{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load imports the document at path and builds a graph from it. Records
// dropped by the builder are listed in the report, not returned as an error.
func Load(path string, opts graph.BuildOptions) (*graph.Graph, *graph.BuildReport, error) {
	doc, err := Import(path)
	if err != nil {
		return nil, nil, err
	}
	g, report := graph.Build(doc, opts)
	return g, report, nil
}

// jsonCompatible rewrites maps with non-string keys, which YAML allows and
// JSON does not.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonCompatible(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = jsonCompatible(val)
		}
		return t
	}
	return v
}
