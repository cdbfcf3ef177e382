package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/pipeline"
	"github.com/matzehuels/tablescape/pkg/viewport"
)

// visibleOpts holds the viewport given on the command line.
type visibleOpts struct {
	vp       graph.Viewport
	relayout bool // lay out before culling instead of using stored positions
	list     bool // print the visible tables
}

// visibleCommand creates the visible command, a viewport culling report.
func (c *CLI) visibleCommand() *cobra.Command {
	opts := visibleOpts{vp: graph.Viewport{Zoom: 1}}

	cmd := &cobra.Command{
		Use:   "visible [diagram.json]",
		Short: "Report which tables a viewport would render",
		Long: `Report which tables a viewport would render.

The viewport is the pan offset (--x, --y) and --zoom of the canvas; a table
is visible when its box touches the screen rectangle widened by --buffer.
At most --max-nodes tables are kept, in diagram order.

Without viewport flags the viewport stored in the diagram is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			viewportSet := fs.Changed("x") || fs.Changed("y") || fs.Changed("zoom") ||
				fs.Changed("screen-width") || fs.Changed("screen-height")
			return c.runVisible(cmd.Context(), args[0], opts, viewportSet)
		},
	}

	cmd.Flags().Float64Var(&opts.vp.X, "x", 0, "horizontal pan offset in screen units")
	cmd.Flags().Float64Var(&opts.vp.Y, "y", 0, "vertical pan offset in screen units")
	cmd.Flags().Float64Var(&opts.vp.Zoom, "zoom", 1, "zoom factor (must be positive)")
	cmd.Flags().Float64Var(&opts.vp.Width, "screen-width", 0, "screen width (default 1920)")
	cmd.Flags().Float64Var(&opts.vp.Height, "screen-height", 0, "screen height (default 1080)")
	cmd.Flags().BoolVar(&opts.relayout, "layout", false, "lay out the diagram before culling")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list the visible tables")
	addLayoutFlags(cmd.Flags())
	addViewportFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runVisible(ctx context.Context, input string, opts visibleOpts, viewportSet bool) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	vp := opts.vp
	if !viewportSet && d.Viewport != nil {
		vp = *d.Viewport
	}
	if vp.Zoom <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom must be positive, got %g", vp.Zoom)
	}

	nodes := d.Nodes
	if opts.relayout {
		runner, err := c.newRunner(ctx)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()
		res, err := runner.Layout(ctx, d, pipeline.Options{Config: c.Config})
		if err != nil {
			return err
		}
		nodes = res.Nodes
	}

	m := viewport.New(c.Config.Viewport, viewport.WithLogger(c.Logger))
	m.StartRenderCycle()
	visible := m.VisibleNodes(nodes, vp)
	m.EndRenderCycle(len(nodes), len(visible), len(visible))

	report := visibilityReport{
		Viewport: vp,
		Rect:     viewport.VisibleRect(vp, c.Config.Viewport.ViewportBuffer),
		Metrics:  m.Metrics(),
		Lazy:     c.Config.Viewport.EnableLazyRendering,
	}
	report.print(c)

	if opts.list && len(visible) > 0 {
		fmt.Fprintln(c.out, nodesTable(visible))
	}
	if recs := m.Recommendations(); len(recs) > 0 {
		fmt.Fprintln(c.out, StyleTitle.Render("Recommendations"))
		fmt.Fprint(c.out, bulletList(recs))
	}
	return nil
}

type visibilityReport struct {
	Viewport graph.Viewport
	Rect     viewport.Rect
	Metrics  viewport.Metrics
	Lazy     bool
}

func (r visibilityReport) print(c *CLI) {
	w, h := r.Viewport.ScreenSize()
	fmt.Fprintln(c.out, StyleTitle.Render("Viewport"))
	printKeyValue(c.out, "pan", fmt.Sprintf("%g, %g", r.Viewport.X, r.Viewport.Y))
	printKeyValue(c.out, "zoom", strconv.FormatFloat(r.Viewport.Zoom, 'g', -1, 64))
	printKeyValue(c.out, "screen", fmt.Sprintf("%gx%g", w, h))
	if !r.Lazy {
		printKeyValue(c.out, "culling", "off")
	} else {
		printKeyValue(c.out, "area", fmt.Sprintf("(%.0f, %.0f) to (%.0f, %.0f)", r.Rect.Left, r.Rect.Top, r.Rect.Right, r.Rect.Bottom))
	}
	printKeyValue(c.out, "tables", strconv.Itoa(r.Metrics.TotalNodes))
	printKeyValue(c.out, "visible", StyleNumber.Render(strconv.Itoa(r.Metrics.VisibleNodes)))
	if r.Metrics.TotalNodes > 0 {
		culled := r.Metrics.TotalNodes - r.Metrics.VisibleNodes
		printKeyValue(c.out, "culled", fmt.Sprintf("%d (%.0f%%)", culled, 100*float64(culled)/float64(r.Metrics.TotalNodes)))
	}
	fmt.Fprintln(c.out)
}
