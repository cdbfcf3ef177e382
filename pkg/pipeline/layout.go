package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablescape/pkg/config"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
	"github.com/matzehuels/tablescape/pkg/observability"
	"github.com/matzehuels/tablescape/pkg/viewport"
)

// ComputeLayout positions the diagram with the algorithm named by
// cfg.Layout.Algorithm. Force layouts start from the stored positions and
// run until they settle or cfg.Force.Steps is reached; ctx is checked
// between steps.
func ComputeLayout(ctx context.Context, d graph.Diagram, cfg config.Config) (res layout.Result, err error) {
	algorithm := cfg.Layout.Algorithm
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, algorithm, len(d.Nodes))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, algorithm, time.Since(start), err)
	}()

	switch algorithm {
	case config.AlgorithmForce:
		return runForce(ctx, d, cfg.Force)
	case config.AlgorithmGrouped:
		return layout.HierarchicalGroupLayout(d.Nodes, d.Edges, cfg.GroupBy()), nil
	default:
		return layout.AutoLayout(d.Nodes, d.Edges, cfg.LayoutOptions()), nil
	}
}

func runForce(ctx context.Context, d graph.Diagram, fc config.ForceConfig) (layout.Result, error) {
	sim := layout.NewSimulation(d.Nodes, d.Edges, fc.Width, fc.Height)
	for sim.Steps() < fc.Steps {
		if err := ctx.Err(); err != nil {
			return layout.Result{}, err
		}
		if sim.Step() <= fc.Tolerance {
			break
		}
	}
	return sim.Result(), nil
}

// BuildGroups clusters laid-out tables into groups with a throwaway
// viewport manager. It returns nil when grouping is disabled or the
// diagram is too small to group.
func BuildGroups(nodes []graph.Node, edges []graph.Edge, cfg viewport.Config, logger *log.Logger) []graph.TableGroup {
	opts := []viewport.Option{}
	if logger != nil {
		opts = append(opts, viewport.WithLogger(logger))
	}
	return viewport.New(cfg, opts...).CreateTableGroups(nodes, edges)
}
