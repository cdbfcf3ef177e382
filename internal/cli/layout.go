package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablescape/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		groups bool
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Compute table positions for a schema diagram",
		Long: `Compute table positions for a schema diagram.

The layout command reads a diagram (nodes and edges as JSON, or - for stdin)
and positions every table with one of three algorithms:

  auto     layered layout; relationships point from one rank to the next
  force    physics simulation starting from the stored positions
  grouped  layered layout per schema or connected component, packed in rows

The output is the same diagram with new positions, plus ranks and, with
--groups, the proximity groups. Results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, groups)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&groups, "groups", false, "include proximity groups in the output")
	addLayoutFlags(cmd.Flags())
	addViewportFlags(cmd.Flags())

	return cmd
}

// runLayout lays out the diagram and writes the JSON export.
func (c *CLI) runLayout(ctx context.Context, input, output string, groups bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Computing %s layout...", c.Config.Layout.Algorithm))
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Config:  c.Config,
		Source:  input,
		Formats: []string{pipeline.FormatJSON},
		Groups:  groups,
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("computed layout", "algorithm", c.Config.Layout.Algorithm)

	outputPath := outputPath(input, output, ".layout.json")
	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess(c.out, "Layout complete")
	printFile(c.out, outputPath)
	printStats(c.out, result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	if groups {
		printDetail(c.out, "%d groups", result.Stats.GroupCount)
	}
	fmt.Fprintln(c.out)
	printNextStep(c.out, "Render", appName+" render "+outputPath+" --keep-positions")

	return nil
}
