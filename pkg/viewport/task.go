package viewport

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/matzehuels/tablescape/pkg/graph"
)

// Chunking parameters.
const (
	// ChunkSize is the number of nodes processed per background step.
	ChunkSize = 50
	// YieldEvery is the number of chunks processed between yields.
	YieldEvery = 10
	// BatchSize is the number of nodes per progressive batch.
	BatchSize = 20
	// BatchDelay is the pause between progressive batches.
	BatchDelay = 100 * time.Millisecond
)

// ErrStaleGeneration is returned by chunked processing when the generation
// attached to its context was superseded.
var ErrStaleGeneration = errors.New("stale generation")

// Scheduler hands control back to the surrounding runtime between units of
// chunked work. Both methods return ctx.Err() when ctx is done.
type Scheduler interface {
	// Yield lets other work run before resuming.
	Yield(ctx context.Context) error
	// Sleep pauses for d.
	Sleep(ctx context.Context, d time.Duration) error
}

// RuntimeScheduler yields to the Go scheduler and sleeps on timers.
type RuntimeScheduler struct{}

// Yield implements Scheduler.
func (RuntimeScheduler) Yield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Sleep implements Scheduler.
func (RuntimeScheduler) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Task is a resumable unit of chunked work. Step performs one unit and
// reports whether more units remain.
type Task interface {
	Step() (more bool)
}

// chunkTask runs fn over consecutive slices of nodes.
type chunkTask struct {
	nodes []graph.Node
	size  int
	next  int
	fn    func([]graph.Node)
}

func (t *chunkTask) Step() bool {
	if t.next >= len(t.nodes) {
		return false
	}
	end := min(t.next+t.size, len(t.nodes))
	t.fn(t.nodes[t.next:end])
	t.next = end
	return t.next < len(t.nodes)
}

func (t *chunkTask) processed() int { return t.next }

// suspension decides what happens between steps of a task.
type suspension func(ctx context.Context, steps int) error

// run drives task to completion. After each step that leaves work behind,
// pause is consulted; cancellation and generation checks happen only there.
func runTask(ctx context.Context, task Task, pause suspension) error {
	for steps := 1; ; steps++ {
		if !task.Step() {
			return nil
		}
		if err := pause(ctx, steps); err != nil {
			return err
		}
	}
}

// checkpoint reports why work started under ctx must stop, if it must.
func (m *Manager) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g, ok := generationFrom(ctx); ok && !m.IsCurrent(g) {
		return ErrStaleGeneration
	}
	return nil
}

// ProcessBackgroundLayout runs fn over nodes in chunks of ChunkSize,
// yielding to the scheduler after every YieldEvery chunks. With background
// layout disabled, fn is called once with all nodes.
//
// Work already handed to fn is never undone: on cancellation, or when the
// generation attached with WithGeneration is superseded, processing stops
// at the next yield point and the cause is returned.
func (m *Manager) ProcessBackgroundLayout(ctx context.Context, nodes []graph.Node, fn func([]graph.Node)) error {
	if len(nodes) == 0 {
		return nil
	}
	if !m.cfg.EnableBackgroundLayout {
		fn(nodes)
		return nil
	}

	task := &chunkTask{nodes: nodes, size: ChunkSize, fn: fn}
	return runTask(ctx, task, func(ctx context.Context, steps int) error {
		if steps%YieldEvery != 0 {
			return nil
		}
		m.hooks.OnYield(task.processed(), len(nodes))
		if err := m.scheduler.Yield(ctx); err != nil {
			return err
		}
		return m.checkpoint(ctx)
	})
}

// LoadNodesProgressively hands nodes to onBatch in batches of BatchSize,
// sleeping BatchDelay between batches so a render surface can fill in
// incrementally. Cancellation is honoured between batches.
func (m *Manager) LoadNodesProgressively(ctx context.Context, nodes []graph.Node, onBatch func([]graph.Node)) error {
	task := &chunkTask{nodes: nodes, size: BatchSize, fn: onBatch}
	return runTask(ctx, task, func(ctx context.Context, _ int) error {
		m.hooks.OnYield(task.processed(), len(nodes))
		if err := m.scheduler.Sleep(ctx, BatchDelay); err != nil {
			return err
		}
		return m.checkpoint(ctx)
	})
}
