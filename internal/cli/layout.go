package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	lio "github.com/matzehuels/lineage/pkg/io"
)

// layoutCommand creates the layout command, which writes the render-ready
// view of a lineage document.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		opts   viewOpts
	)

	cmd := &cobra.Command{
		Use:   "layout [lineage.json|lineage.yaml]",
		Short: "Compute the layout of a lineage graph",
		Long: `Compute the layout of a lineage graph.

The layout command builds the graph, ranks it into columns (or rows with
--orientation TB) and writes the positioned view as JSON: nodes with their
sizes and attribute anchors, edges with their handles and curvature, and the
layer bands. Records that cannot be placed are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.view.json, - for stdout)")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, opts viewOpts) error {
	e, err := c.loadEngine(ctx, input, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".view.json"
	}
	out, err := c.openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := lio.WriteView(e.View(), out); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	if output != "-" {
		res := e.LayoutResult()
		printSuccess("Layout complete")
		printFile(output)
		printStats(e.Graph().NodeCount(), e.Graph().EdgeCount(), e.Report().Dropped())
		if !res.Converged {
			printWarning("Crossing reduction stopped after %d rounds without converging", res.Rounds)
		}
		printNextStep("Render", "lineage render "+input)
	}
	return nil
}
