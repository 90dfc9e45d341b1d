package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/engine"
	lio "github.com/matzehuels/lineage/pkg/io"
	"github.com/matzehuels/lineage/pkg/trace"
)

// errNoSelection is returned when the interactive picker is left without a
// choice.
var errNoSelection = errors.New("no attribute selected")

type traceOpts struct {
	viewOpts
	interactive bool
	asJSON      bool
	view        string
}

// traceCommand creates the trace command, which follows one attribute's
// lineage upstream and downstream.
func (c *CLI) traceCommand() *cobra.Command {
	var opts traceOpts

	cmd := &cobra.Command{
		Use:   "trace [lineage.json] [node] [attribute]",
		Short: "Trace the lineage of one attribute",
		Long: `Trace the lineage of one attribute.

Every attribute-level edge feeding the attribute (upstream) and fed by it
(downstream) is followed transitively. The traced nodes and their traced
attributes are printed in graph order. Use -i to pick the attribute
interactively, and --view to write the highlighted view.`,
		ValidArgsFunction: c.completeNodeIDs,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.interactive {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTrace(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the node and attribute interactively")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the trace as JSON")
	cmd.Flags().StringVar(&opts.view, "view", "", "also write the highlighted view JSON to this file")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runTrace(ctx context.Context, args []string, opts traceOpts) error {
	e, err := c.loadEngine(ctx, args[0], opts.viewOpts)
	if err != nil {
		return err
	}

	var sel TraceSelection
	if opts.interactive {
		picked, err := pickAttribute(e)
		if err != nil {
			return err
		}
		sel = *picked
	} else {
		sel = TraceSelection{Node: args[1], Attr: args[2]}
	}

	res := e.OnAttributeClick(ctx, sel.Node, sel.Attr)
	if res.Empty() {
		printWarning("Nothing to trace: %s has no attribute %q", sel.Node, sel.Attr)
		return nil
	}

	if opts.asJSON {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(traceOutput(e, res)); err != nil {
			return err
		}
	} else {
		c.printTrace(e, res)
	}

	if opts.view != "" {
		out, err := c.openOutput(opts.view)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := lio.WriteView(e.View(), out); err != nil {
			return fmt.Errorf("write view %s: %w", opts.view, err)
		}
		printFile(opts.view)
	}
	return nil
}

func pickAttribute(e *engine.Engine) (*TraceSelection, error) {
	p := tea.NewProgram(NewAttributePickerModel(e.Search))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("attribute picker: %w", err)
	}
	m, ok := final.(AttributePickerModel)
	if !ok || m.Selected == nil {
		return nil, errNoSelection
	}
	return m.Selected, nil
}

type tracedNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Attrs []string `json:"attrs,omitempty"`
}

type traceResult struct {
	Focus trace.Focus  `json:"focus"`
	Nodes []tracedNode `json:"nodes"`
	Edges []string     `json:"edges"`
}

func traceOutput(e *engine.Engine, res trace.Result) traceResult {
	out := traceResult{Focus: res.Focus, Edges: res.EdgeIDs(e.Graph())}
	for _, id := range res.NodeIDs(e.Graph()) {
		n, _ := e.Graph().Node(id)
		out.Nodes = append(out.Nodes, tracedNode{ID: id, Label: n.Label(), Attrs: res.Attrs[id]})
	}
	return out
}

func (c *CLI) printTrace(e *engine.Engine, res trace.Result) {
	out := traceOutput(e, res)
	fmt.Fprintln(c.Out, StyleTitle.Render(fmt.Sprintf("Lineage of %s.%s", res.Focus.NodeID, res.Focus.Attr)))
	for _, n := range out.Nodes {
		line := "  " + StyleValue.Render(n.Label)
		if len(n.Attrs) > 0 {
			line += StyleDim.Render(" · ") + StyleTraced.Render(strings.Join(n.Attrs, ", "))
		}
		fmt.Fprintln(c.Out, line)
	}
	printKeyValue("nodes", fmt.Sprint(len(out.Nodes)))
	printKeyValue("edges", fmt.Sprint(len(out.Edges)))
}
