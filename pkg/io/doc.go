// Package io reads and writes lineage documents.
//
// # Format
//
// A lineage document has two top-level arrays, in JSON or YAML:
//
//	{
//	  "nodes": [
//	    {"id": "orders", "name": "Orders", "category": "table", "layer": "bronze",
//	     "attributes": [{"name": "id", "dataType": "int", "isPrimaryKey": true},
//	                    {"name": "amount", "dataType": "decimal"}]},
//	    {"id": "revenue", "attributes": ["total"]}
//	  ],
//	  "links": [
//	    {"source": "orders", "target": "revenue", "type": "aggregate",
//	     "sourceAttr": "amount", "targetAttr": "total",
//	     "updated_at": "2024-05-01T10:00:00Z", "script_name": "daily.sql"}
//	  ]
//	}
//
// "edges" is accepted for "links", and the field spellings produced by
// common catalog exports (display_name, columns, data_type, map, ...) are
// recognised. Fields the engine does not interpret are kept in each node's
// and edge's opaque payload and written back on export. See
// [graph.RawDocument] for the full list.
//
// # Import
//
// [Import] picks the format from the file extension; [ReadJSON] and
// [ReadYAML] read from any io.Reader. [Load] imports and builds in one step:
//
//	g, report, err := io.Load("lineage.yaml", graph.BuildOptions{Logger: logger})
//	if err != nil {
//	    return err // unreadable file or not a document at all
//	}
//	for _, issue := range report.Issues {
//	    logger.Warn("dropped", "record", issue.Record, "err", issue.Err)
//	}
//
// A document that cannot be decoded at all returns a MALFORMED_INPUT error.
// Malformed individual records do not: they reach [graph.Build], which drops
// and reports them.
//
// # Export
//
// [WriteJSON], [WriteYAML] and [Export] write the imported data of a graph
// back as a document, so import and export round-trip. [WriteView] writes the
// render-ready [render.View] instead, with positions, handle anchors and
// trace state, for consumption by a front end.
//
// [graph.RawDocument]: github.com/matzehuels/lineage/pkg/graph.RawDocument
// [graph.Build]: github.com/matzehuels/lineage/pkg/graph.Build
// [render.View]: github.com/matzehuels/lineage/pkg/render.View
package io
