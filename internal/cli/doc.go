// Package cli implements the lineage command-line interface.
//
// The CLI prepares lineage documents (JSON or YAML) with the engine package
// and either writes the result or serves it. It is built with cobra; status
// output is styled with lipgloss and written to stderr, results to stdout.
//
// # Commands
//
//   - layout: write the positioned view as JSON
//   - trace: follow one attribute's lineage, interactively with -i
//   - render: draw the graph as SVG, PDF, PNG or DOT
//   - force: print force simulation parameters
//   - serve: expose the engine to an interactive viewer over HTTP
//   - config: show or create the TOML configuration
//
// # Configuration
//
// Every command reads $XDG_CONFIG_HOME/lineage/config.toml when it exists,
// or the file named by --config. Unknown keys are rejected.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports records that were kept with a degraded endpoint.
package cli
