package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/observability"
)

// Load reads and validates a diagram from a file or, for StdinSource, from
// stdin. Missing files yield FILE_NOT_FOUND and undecodable input yields
// INVALID_DIAGRAM.
func Load(ctx context.Context, source string) (graph.Diagram, error) {
	return load(ctx, source, os.Stdin)
}

func load(ctx context.Context, source string, stdin io.Reader) (d graph.Diagram, err error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		hooks.OnLoadComplete(ctx, source, len(d.Nodes), time.Since(start), err)
	}()

	if source == StdinSource {
		d, err = graph.ReadDiagram(stdin)
		if err != nil {
			return graph.Diagram{}, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "read diagram from stdin")
		}
		return d, nil
	}

	if err := errors.ValidatePath(source); err != nil {
		return graph.Diagram{}, err
	}
	f, err := os.Open(source)
	if err != nil {
		return graph.Diagram{}, errors.WrapFile(errors.ErrCodeInvalidPath, err, source)
	}
	defer f.Close()

	d, err = graph.ReadDiagram(f)
	if err != nil {
		return graph.Diagram{}, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "read diagram %s", source)
	}
	return d, nil
}
