package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// recentCommand creates the recent command.
func (c *CLI) recentCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the newest pods",
		Long: `Recent prints a table of the newest pods, in the order they would appear
in the feed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return perrors.New(perrors.ErrCodeInvalidInput, "--count must be positive, got %d", count)
			}
			ctx := cmd.Context()

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			opts := ws.options()
			opts.Limit = count
			in, err := ws.runner.Load(ctx, opts)
			if err != nil {
				return err
			}

			pods, err := ws.runner.Builder(in, opts).Select()
			if err != nil {
				return err
			}
			if len(pods) == 0 {
				printInfo("No pods found in %s", ws.cfg.Specs.Dir)
				return nil
			}

			rows := make([]recentRow, len(pods))
			for i, p := range pods {
				published, _ := in.Dates.Lookup(p.Name)
				rows[i] = recentRow{Name: p.Name, Version: p.Version, Published: published, Authors: p.Authors}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%d newest pods", len(rows))))
			fmt.Fprintln(out, renderRecentTable(rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of pods to list")
	return cmd
}
