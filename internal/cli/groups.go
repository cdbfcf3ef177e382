package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablescape/pkg/pipeline"
)

// groupsCommand creates the groups command, a clustering report.
func (c *CLI) groupsCommand() *cobra.Command {
	var keepPositions bool

	cmd := &cobra.Command{
		Use:   "groups [diagram.json]",
		Short: "Cluster nearby tables into groups and print a report",
		Long: `Cluster nearby tables into groups and print a report.

Tables within 500 units of a group's first table join that group; tables
that end up alone are collected into "Other Tables". Diagrams with fewer
than 20 tables are not grouped.

By default the diagram is laid out first; --keep-positions clusters the
stored positions instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGroups(cmd.Context(), args[0], keepPositions)
		},
	}

	cmd.Flags().BoolVar(&keepPositions, "keep-positions", false, "cluster the stored positions without laying out again")
	addLayoutFlags(cmd.Flags())
	addViewportFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runGroups(ctx context.Context, input string, keepPositions bool) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Layout(ctx, d, pipeline.Options{Config: c.Config, KeepPositions: keepPositions})
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	groups := pipeline.BuildGroups(res.Nodes, res.Edges, c.Config.Viewport, c.Logger)
	prog.done("built groups", "groups", len(groups))

	switch {
	case !c.Config.Viewport.EnableGrouping:
		printInfo(c.out, "Grouping is disabled")
		return nil
	case len(groups) == 0:
		printInfo(c.out, "%d tables is too few to group", len(res.Nodes))
		return nil
	}

	fmt.Fprintln(c.out, StyleTitle.Render("Table Groups"))
	fmt.Fprintln(c.out, groupsTable(groups))
	printStats(c.out, len(res.Nodes), len(res.Edges), false)
	return nil
}
