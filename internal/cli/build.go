package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the RSS feed of the newest pods",
		Long: `Build reads the latest podspecs from the Specs checkout, looks up the
creation date of every pod and writes an RSS 2.0 feed of the newest pods.

The feed goes to stdout unless --output is given.`,
		Example: `  podfeed build > feed.xml
  podfeed build -o public/new-pods.rss --specs ~/Specs --dates dates.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			prog := newProgress(logger)
			res, err := ws.runner.Run(ctx, ws.options())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), res.XML)
				return err
			}

			if err := writeOutput(output, res.XML); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built feed with %d items", res.Stats.ItemCount))
			printSuccess("Feed of %s newest pods out of %s",
				StyleNumber.Render(fmt.Sprint(res.Stats.ItemCount)),
				StyleNumber.Render(fmt.Sprint(res.Stats.PodCount)))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path, data string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
