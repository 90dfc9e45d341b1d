package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

// forceCommand prints the force simulation parameters derived for a graph,
// for renderers that offer a hub-and-spoke force view next to the ranked
// layout.
func (c *CLI) forceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force [lineage.json]",
		Short: "Print force simulation parameters as JSON",
		Long: `Print force simulation parameters as JSON.

The parameters are repulsion, collision radius and, per node, the distance
the radial force pulls it to: nodes with many incoming edges sit further
out. Tick budget and energy threshold bound how long a simulation runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runForce(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runForce(ctx context.Context, input string) error {
	e, err := c.loadEngine(ctx, input, viewOpts{})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(e.ForceParams())
}
