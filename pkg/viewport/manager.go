package viewport

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/observability"
)

// Manager keeps a diagram cheap to redraw. It owns the configuration, the
// group map built by CreateTableGroups, the last visible set and the render
// metrics. Every Manager is independent: nothing is shared between instances.
//
// A Manager is driven from a single goroutine (the render loop) and is not
// safe for concurrent use.
type Manager struct {
	cfg Config

	clock     Clock
	scheduler Scheduler
	memory    MemoryProbe
	logger    *log.Logger
	hooks     observability.ViewportHooks

	groups     map[string]*graph.TableGroup
	groupOrder []string
	visible    []string

	metrics     Metrics
	frameCount  int
	windowStart time.Time
	renderStart time.Time

	generation Generation
}

// Clock returns the current time.
type Clock func() time.Time

// MemoryProbe reports the heap in use in megabytes. ok is false when the
// environment does not expose heap statistics.
type MemoryProbe func() (mb float64, ok bool)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithScheduler sets the scheduler chunked processing yields to.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		if s != nil {
			m.scheduler = s
		}
	}
}

// WithMemoryProbe replaces the runtime heap probe. A nil probe disables
// memory reporting.
func WithMemoryProbe(p MemoryProbe) Option {
	return func(m *Manager) { m.memory = p }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHooks sets the event hooks, overriding the global registration.
func WithHooks(h observability.ViewportHooks) Option {
	return func(m *Manager) {
		if h != nil {
			m.hooks = h
		}
	}
}

// New creates a Manager with the given configuration.
func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		clock:     time.Now,
		scheduler: RuntimeScheduler{},
		memory:    runtimeHeapMB,
		logger:    log.Default(),
		hooks:     observability.Viewport(),
		groups:    make(map[string]*graph.TableGroup),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.windowStart = m.clock()
	m.renderStart = m.windowStart
	return m
}

// Config returns the current configuration.
func (m *Manager) Config() Config { return m.cfg }

// UpdateConfig replaces the configuration. Cached groups are kept.
func (m *Manager) UpdateConfig(cfg Config) {
	m.cfg = cfg
	m.logger.Debug("viewport config updated",
		"lazy", cfg.EnableLazyRendering,
		"max", cfg.MaxNodesInView,
		"grouping", cfg.EnableGrouping,
		"background", cfg.EnableBackgroundLayout)
}

// ClearCache drops all groups and the cached visible set.
func (m *Manager) ClearCache() {
	m.groups = make(map[string]*graph.TableGroup)
	m.groupOrder = nil
	m.visible = nil
}

// =============================================================================
// Generations
// =============================================================================

// Generation identifies one round of asynchronous work. Starting a new round
// makes results of older rounds stale.
type Generation string

// BeginGeneration starts a new round and returns its token.
func (m *Manager) BeginGeneration() Generation {
	m.generation = Generation(uuid.NewString())
	return m.generation
}

// IsCurrent reports whether g is the latest generation.
func (m *Manager) IsCurrent(g Generation) bool {
	return g != "" && g == m.generation
}

type generationKey struct{}

// WithGeneration attaches a generation token to ctx. Chunked processing
// started with such a context stops at its next yield point once the token
// is no longer current.
func WithGeneration(ctx context.Context, g Generation) context.Context {
	return context.WithValue(ctx, generationKey{}, g)
}

func generationFrom(ctx context.Context) (Generation, bool) {
	g, ok := ctx.Value(generationKey{}).(Generation)
	return g, ok
}

func runtimeHeapMB() (float64, bool) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1024 * 1024), true
}
