package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablescape/pkg/pipeline"
	"github.com/matzehuels/tablescape/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string   // output file (single format) or base path (multiple)
	formats       []string // dot, svg, png, pdf, json
	groups        bool     // colour tables by proximity group
	detailed      bool     // list columns inside each table
	keepPositions bool     // skip layout and render the stored positions
	refresh       bool     // ignore cached layouts and artifacts
}

// renderCommand creates the render command for exporting diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [diagram.json]",
		Short: "Export a laid-out diagram as DOT, SVG, PNG, PDF or JSON",
		Long: `Export a laid-out diagram as DOT, SVG, PNG, PDF or JSON.

Tables are pinned at their computed positions and Graphviz routes the
relationship edges. PNG and PDF need rsvg-convert (librsvg) on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().BoolVar(&opts.groups, "groups", false, "colour tables by proximity group")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list columns inside each table")
	cmd.Flags().BoolVar(&opts.keepPositions, "keep-positions", false, "render the stored positions without laying out again")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	addLayoutFlags(cmd.Flags())
	addViewportFlags(cmd.Flags())

	return cmd
}

// runRender lays out and renders the diagram, then writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(opts.formats, ", ")+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Config:        c.Config,
		Source:        input,
		Formats:       opts.formats,
		Groups:        opts.groups,
		Detailed:      opts.detailed,
		KeepPositions: opts.keepPositions,
		Refresh:       opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		if errors.Is(err, render.ErrConverterMissing) {
			printWarning(c.out, "PNG and PDF export need rsvg-convert; svg and dot work without it")
		}
		return err
	}
	spinner.Stop()

	printSuccess(c.out, "Rendered %s", strings.Join(opts.formats, ", "))
	for _, format := range opts.formats {
		path := artifactPath(input, opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(c.out, path)
	}
	printStats(c.out, result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	return nil
}

// artifactPath picks the file for one format. A single format honours
// --output verbatim; several formats treat it as a base path.
func artifactPath(input, output, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	if output != "" {
		return strings.TrimSuffix(output, "."+format) + "." + format
	}
	return outputPath(input, "", "."+format)
}
