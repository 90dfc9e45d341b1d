package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/engine"
	lio "github.com/matzehuels/lineage/pkg/io"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"

	defaultPNGScale = 2.0
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatJSON: true, formatDOT: true, formatSVG: true, formatPDF: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	viewOpts
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: svg, dot, json, pdf, png
	detailed bool     // show data types and keys in expanded nodes
	trace    string   // node.attribute to highlight before rendering
	scale    float64  // PNG scale factor
	noCache  bool     // bypass the render cache
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render [lineage.json]",
		Short: "Render a lineage graph to SVG, PDF, PNG, DOT or JSON",
		Long: `Render a lineage graph.

Nodes are drawn at their computed positions; expanded nodes list their
attributes and attribute-level edges attach to the attribute rows. With
--trace node.attribute the lineage of that attribute is highlighted and the
rest of the graph dimmed. PDF and PNG output requires rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.formats, err = parseFormats(formatsStr); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show data types and primary keys")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "highlight the lineage of node.attribute")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	opts.register(cmd)

	return cmd
}

// parseFormats reads the comma-separated --format flag. Formats are
// case-insensitive and listed once each; an empty flag means svg.
func parseFormats(s string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch {
		case f == "" || slices.Contains(formats, f):
			continue
		case !validFormats[f]:
			return nil, fmt.Errorf("invalid format %q (want svg, dot, json, pdf or png)", f)
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		formats = []string{formatSVG}
	}
	return formats, nil
}

// parseTraceFocus splits "node.attribute" at the last dot, so node ids may
// contain dots themselves (schema.table.column).
func parseTraceFocus(s string) (node, attr string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("invalid trace focus %q (want node.attribute)", s)
	}
	return s[:i], s[i+1:], nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	var focusNode, focusAttr string
	if opts.trace != "" {
		var err error
		if focusNode, focusAttr, err = parseTraceFocus(opts.trace); err != nil {
			return err
		}
	}

	store := c.newCache(ctx, opts.noCache)
	defer store.Close()
	key, err := c.renderKey(input, opts)
	if err != nil {
		return err
	}

	// The engine is only prepared when some format misses the cache.
	var e *engine.Engine
	prepare := func() error {
		if e != nil {
			return nil
		}
		if e, err = c.loadEngine(ctx, input, opts.viewOpts); err != nil {
			return err
		}
		if focusNode != "" {
			if res := e.OnAttributeClick(ctx, focusNode, focusAttr); res.Empty() {
				printWarning("Nothing to trace for %s", opts.trace)
			}
		}
		return nil
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}

		formatKey := cache.Key("render", key, format)
		data, hit, err := store.Get(ctx, formatKey)
		if err != nil {
			c.Logger.Debug("cache read failed", "error", err)
		}
		if !hit {
			if err := prepare(); err != nil {
				return err
			}
			if data, err = c.renderFormat(ctx, e, format, opts); err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			if err := store.Set(ctx, formatKey, data, c.Config.Cache.TTLDuration()); err != nil {
				c.Logger.Debug("cache write failed", "error", err)
			}
		}

		if err := c.writeOutput(path, data); err != nil {
			return err
		}
		if path != "-" {
			printSuccess("Rendered %s", format)
			printFile(path)
			printCacheStatus(hit)
		}
	}
	return nil
}

// renderKey hashes everything that influences the rendered bytes except the
// format.
func (c *CLI) renderKey(input string, opts *renderOpts) (string, error) {
	doc, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", input, err)
	}
	var cfg bytes.Buffer
	if err := c.Config.Encode(&cfg); err != nil {
		return "", err
	}
	return cache.Key("input", cache.Hash(doc), cfg.String(),
		opts.orientation, opts.expandAll, opts.expand, opts.trace, opts.detailed, opts.scale), nil
}

func (c *CLI) renderFormat(ctx context.Context, e *engine.Engine, format string, opts *renderOpts) ([]byte, error) {
	var data []byte
	err := spin(ctx, "Rendering "+format+"...", "Rendering failed", func() error {
		var err error
		data, err = renderView(ctx, e, format, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debugf("Generated %s: %d bytes", format, len(data))
	return data, nil
}

func (c *CLI) writeOutput(path string, data []byte) error {
	out, err := c.openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// renderView produces the bytes for one output format.
func renderView(ctx context.Context, e *engine.Engine, format string, opts *renderOpts) ([]byte, error) {
	v := e.View()
	if format == formatJSON {
		var buf bytes.Buffer
		if err := lio.WriteView(v, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dot := nodelink.ToDOT(v, nodelink.Options{Detailed: opts.detailed})
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}
