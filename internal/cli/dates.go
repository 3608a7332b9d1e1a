package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/history"
)

// datesCommand creates the dates command group.
func (c *CLI) datesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Manage pod creation dates",
		Long: `Every pod in the feed needs the date it first appeared in the Specs
repository. These commands move dates into the configured store and
inspect them.`,
	}

	cmd.AddCommand(c.datesImportCommand())
	cmd.AddCommand(c.datesShowCommand())
	cmd.AddCommand(c.datesMissingCommand())

	return cmd
}

// datesImportCommand creates the "dates import" subcommand.
func (c *CLI) datesImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import creation dates from a JSON or YAML file",
		Example: `  podfeed dates import creation_dates.json
  podfeed dates import dates.yaml --dates ~/.local/share/podfeed/dates.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := history.NewFileStore(args[0]).Load(ctx)
			if err != nil {
				return err
			}

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			existing, err := ws.dates.Load(ctx)
			if perrors.Is(err, perrors.ErrCodeFileNotFound) {
				existing, err = history.Index{}, nil
			}
			if err != nil {
				return err
			}
			changed := existing.Merge(src)

			if err := ws.dates.Save(ctx, src); err != nil {
				return err
			}

			printSuccess("Imported %s dates (%s new or changed)",
				StyleNumber.Render(fmt.Sprint(len(src))),
				StyleNumber.Render(fmt.Sprint(changed)))
			printDetail("Store: %s (%s)", ws.cfg.Dates.Path, ws.cfg.Dates.ResolvedDriver())
			printNextStep("Build the feed", "podfeed build -o feed.xml")
			return nil
		},
	}
}

// datesShowCommand creates the "dates show" subcommand.
func (c *CLI) datesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pod>",
		Short: "Print the creation date of a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := perrors.ValidatePodName(name); err != nil {
				return err
			}

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			ix, err := ws.dates.Load(ctx)
			if err != nil {
				return err
			}
			t, ok := ix.Lookup(name)
			if !ok {
				return perrors.New(perrors.ErrCodeNotFound, "no creation date for pod %s", name)
			}

			out := cmd.OutOrStdout()
			printKeyValue(out, "Pod", name)
			printKeyValue(out, "Created", t.UTC().Format(time.RFC3339))
			printKeyValue(out, "Age", time.Since(t).Round(time.Hour).String())
			return nil
		},
	}
}

// datesMissingCommand creates the "dates missing" subcommand.
func (c *CLI) datesMissingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "List pods that have no creation date",
		Long: `Missing lists the pods in the Specs checkout without a creation date.
The feed cannot be built while any are missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			in, err := ws.runner.Load(ctx, ws.options())
			if err != nil {
				return err
			}

			missing := 0
			for _, p := range in.Pods {
				if _, ok := in.Dates.Lookup(p.Name); !ok {
					fmt.Fprintln(cmd.OutOrStdout(), p.Name)
					missing++
				}
			}
			if missing == 0 {
				printSuccess("All %d pods have a creation date", len(in.Pods))
				return nil
			}
			printWarning("%d of %d pods have no creation date", missing, len(in.Pods))
			return nil
		},
	}
}
