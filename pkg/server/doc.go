// Package server serves a lineage engine over HTTP for an interactive
// viewer.
//
// Every renderer callback and toolbar operation has a JSON endpoint under
// /api: GET view returns the render-ready projection, POST trace and
// DELETE trace drive attribute tracing, POST nodes/{id}/toggle expands or
// collapses a node, POST nodes/{id}/hover and DELETE hover show and drop a
// node's neighbourhood, and so on. Errors carry the engine's error code:
//
//	{"code": "UNKNOWN_NODE", "message": "unknown node \"ghost\""}
//
// With Config.Watch set the lineage document is reloaded whenever it
// changes on disk, and GET events streams a "reload" event to open viewers.
// A document that fails to load leaves the previous engine serving.
package server
