package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablescape/pkg/config"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
	"github.com/matzehuels/tablescape/pkg/metrics"
	"github.com/matzehuels/tablescape/pkg/observability"
	"github.com/matzehuels/tablescape/pkg/pipeline"
	"github.com/matzehuels/tablescape/pkg/viewport"
)

const (
	// metricsNamespace prefixes every exported Prometheus metric.
	metricsNamespace = "tablescape"

	defaultFrameRate = 30
	panStep          = 100.0
	zoomStep         = 1.25
)

// simulateOpts holds the command-line flags for the simulate command.
type simulateOpts struct {
	output      string
	frameRate   int
	headless    bool
	metricsAddr string
}

// simulateCommand creates the simulate command, an interactive view of the
// force layout settling frame by frame.
func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOpts{frameRate: defaultFrameRate}

	cmd := &cobra.Command{
		Use:   "simulate [diagram.json]",
		Short: "Watch the force layout settle and track render metrics",
		Long: `Watch the force layout settle and track render metrics.

Tables are loaded in batches, then the force simulation advances one step
per frame. Every frame is culled against the viewport and the viewport
metrics (visible tables, FPS, render time, memory) are shown together with
tuning recommendations. The final positions are written when the view
closes.

Keys: space pause, r restart, g group, arrows pan, +/- zoom, q quit.

Without a terminal, or with --headless, the simulation runs to completion
without the view. --metrics-addr serves Prometheus metrics while it runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.frameRate <= 0 {
				opts.frameRate = defaultFrameRate
			}
			return c.runSimulate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().IntVar(&opts.frameRate, "fps", opts.frameRate, "target frames per second")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "run without the interactive view")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	addLayoutFlags(cmd.Flags())
	addViewportFlags(cmd.Flags())

	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, input string, opts simulateOpts) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Hooks must be registered before the manager is created.
	var collector *metrics.Collector
	var reg *prometheus.Registry
	if opts.metricsAddr != "" {
		reg = prometheus.NewRegistry()
		metrics.NewHooks(reg, metricsNamespace).Register()
		defer observability.Reset()
	}

	mgr := viewport.New(c.Config.Viewport, viewport.WithLogger(c.Logger))
	if reg != nil {
		collector = metrics.NewCollector(mgr, metricsNamespace)
		reg.MustRegister(collector)
		srv, err := metrics.Listen(opts.metricsAddr, reg, c.Logger)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		go func() {
			if err := srv.Serve(ctx); err != nil {
				c.Logger.Warn("metrics server stopped", "err", err)
			}
		}()
		printInfo(c.out, "Serving metrics on http://%s/metrics", srv.Addr())
	}

	nodes := graph.CloneNodes(d.Nodes)
	if err := measureNodes(ctx, mgr, nodes); err != nil {
		return err
	}

	vp := graph.Viewport{Zoom: 1}
	if d.Viewport != nil && d.Viewport.Zoom > 0 {
		vp = *d.Viewport
	}
	state := newSimState(mgr, nodes, d.Edges, vp, c.Config.Force, collector)

	interactive := !opts.headless && isatty.IsTerminal(os.Stdout.Fd())
	if interactive {
		model := newSimModel(ctx, state, time.Second/time.Duration(opts.frameRate))
		final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("simulation view: %w", err)
		}
		if m, ok := final.(simModel); ok {
			state = m.state
		}
	} else {
		prog := newProgress(c.Logger)
		if err := state.run(ctx); err != nil {
			return err
		}
		prog.done("simulation finished", "frames", state.frame, "settled", state.settled)
	}
	if state.sim == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		printWarning(c.out, "Closed before the simulation started, nothing written")
		return nil
	}

	res := state.sim.Result()
	data, err := pipeline.MarshalExport(pipeline.Export{
		Diagram: graph.Diagram{Nodes: res.Nodes, Edges: res.Edges, Viewport: &state.vp},
		Groups:  mgr.Groups(),
	})
	if err != nil {
		return err
	}
	outputPath := outputPath(input, opts.output, ".layout.json")
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess(c.out, "Simulation stopped after %d frames", state.frame)
	printFile(c.out, outputPath)
	printStats(c.out, len(res.Nodes), len(res.Edges), false)
	return nil
}

// measureNodes fills in missing table sizes from their column counts. Large
// diagrams are measured in chunks that yield between batches.
func measureNodes(ctx context.Context, mgr *viewport.Manager, nodes []graph.Node) error {
	return mgr.ProcessBackgroundLayout(ctx, nodes, func(chunk []graph.Node) {
		for i := range chunk {
			if chunk[i].Width > 0 && chunk[i].Height > 0 {
				continue
			}
			chunk[i].Width, chunk[i].Height = layout.NodeSize(chunk[i])
		}
	})
}

// =============================================================================
// Simulation State
// =============================================================================

// simState steps a force simulation and measures every step as one frame
// of a viewport render.
type simState struct {
	mgr       *viewport.Manager
	collector *metrics.Collector

	initial []graph.Node
	edges   []graph.Edge
	force   forceSettings
	vp      graph.Viewport

	sim     *layout.Simulation
	frame   int
	moved   float64
	visible int
	settled bool
}

type forceSettings struct {
	width, height float64
	maxFrames     int
	tolerance     float64
}

func newSimState(mgr *viewport.Manager, nodes []graph.Node, edges []graph.Edge, vp graph.Viewport, fc config.ForceConfig, collector *metrics.Collector) *simState {
	return &simState{
		mgr:       mgr,
		collector: collector,
		initial:   nodes,
		edges:     edges,
		force: forceSettings{
			width:     fc.Width,
			height:    fc.Height,
			maxFrames: fc.Steps,
			tolerance: fc.Tolerance,
		},
		vp: vp,
	}
}

// reset restarts the simulation from the loaded positions.
func (s *simState) reset() {
	s.sim = layout.NewSimulation(s.initial, s.edges, s.force.width, s.force.height)
	s.frame = 0
	s.moved = 0
	s.visible = 0
	s.settled = false
}

// step renders one frame. It reports whether more frames are needed.
func (s *simState) step() bool {
	if s.sim == nil {
		s.reset()
	}
	if s.settled {
		return false
	}

	s.mgr.StartRenderCycle()
	s.moved = s.sim.Step()
	nodes := s.sim.Nodes()
	visible := s.mgr.VisibleNodes(nodes, s.vp)
	s.visible = len(visible)
	s.mgr.EndRenderCycle(len(nodes), len(visible), len(visible))
	if s.collector != nil {
		s.collector.Update()
	}

	s.frame++
	s.settled = s.moved <= s.force.tolerance || s.frame >= s.force.maxFrames
	return !s.settled
}

// run steps until the layout settles or ctx is done.
func (s *simState) run(ctx context.Context) error {
	s.reset()
	if s.force.maxFrames == 0 {
		s.settled = true
		return nil
	}
	for s.step() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// group clusters the current positions.
func (s *simState) group() []graph.TableGroup {
	if s.sim == nil {
		return nil
	}
	return s.mgr.CreateTableGroups(s.sim.Nodes(), s.edges)
}

// =============================================================================
// Simulation View
// =============================================================================

type (
	batchMsg  struct{ loaded int }
	loadedMsg struct{ err error }
	frameMsg  struct{ gen viewport.Generation }
)

// simModel is the bubbletea model for the simulate command. Tables are
// loaded progressively, then each frame tick carries the generation it was
// scheduled for; ticks from before a restart or pause are dropped.
type simModel struct {
	ctx      context.Context
	state    *simState
	interval time.Duration

	batches chan tea.Msg
	loaded  int
	loading bool

	gen    viewport.Generation
	paused bool
	groups int
	err    error
}

func newSimModel(ctx context.Context, state *simState, interval time.Duration) simModel {
	return simModel{
		ctx:      ctx,
		state:    state,
		interval: interval,
		batches:  make(chan tea.Msg, 1),
		loading:  true,
	}
}

// Init starts progressive loading. The manager is only touched by the
// loader until loadedMsg arrives.
func (m simModel) Init() tea.Cmd {
	mgr, nodes, out, ctx := m.state.mgr, m.state.initial, m.batches, m.ctx
	go func() {
		loaded := 0
		err := mgr.LoadNodesProgressively(ctx, nodes, func(batch []graph.Node) {
			loaded += len(batch)
			select {
			case out <- batchMsg{loaded: loaded}:
			case <-ctx.Done():
			}
		})
		select {
		case out <- loadedMsg{err: err}:
		case <-ctx.Done():
		}
	}()
	return m.waitBatch()
}

func (m simModel) waitBatch() tea.Cmd {
	return func() tea.Msg { return <-m.batches }
}

func (m simModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

// restart begins a new generation and schedules its first frame.
func (m simModel) restart() (simModel, tea.Cmd) {
	m.gen = m.state.mgr.BeginGeneration()
	m.paused = false
	return m, m.tick()
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case batchMsg:
		m.loaded = msg.loaded
		return m, m.waitBatch()

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.loaded = len(m.state.initial)
		m.state.reset()
		if m.state.force.maxFrames == 0 {
			m.state.settled = true
			return m, nil
		}
		return m.restart()

	case frameMsg:
		if m.paused || !m.state.mgr.IsCurrent(msg.gen) {
			return m, nil
		}
		if m.state.step() {
			return m, m.tick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m simModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case " ":
		if m.paused {
			return m.restartFromCurrent()
		}
		m.paused = true
		m.state.mgr.BeginGeneration()
	case "r":
		m.state.reset()
		m.groups = 0
		return m.restart()
	case "g":
		m.groups = len(m.state.group())
	case "left", "h":
		m.state.vp.X += panStep
	case "right", "l":
		m.state.vp.X -= panStep
	case "up", "k":
		m.state.vp.Y += panStep
	case "down", "j":
		m.state.vp.Y -= panStep
	case "+", "=":
		m.state.vp.Zoom *= zoomStep
	case "-":
		m.state.vp.Zoom /= zoomStep
	}
	return m, nil
}

// restartFromCurrent resumes a paused simulation without resetting it.
func (m simModel) restartFromCurrent() (tea.Model, tea.Cmd) {
	if m.state.settled {
		m.paused = false
		return m, nil
	}
	return m.restart()
}

var (
	simLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	simPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

func (m simModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Force Layout"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  r restart  g group  ←↑↓→ pan  +/- zoom  q quit"))
	b.WriteString("\n\n")

	if m.loading {
		fmt.Fprintf(&b, "%s loading tables %s\n",
			styleIconSpinner.Render(iconInfo),
			StyleNumber.Render(fmt.Sprintf("%d/%d", m.loaded, len(m.state.initial))))
		return b.String()
	}

	s := m.state
	met := s.mgr.Metrics()
	status := "running"
	switch {
	case s.settled:
		status = "settled"
	case m.paused:
		status = "paused"
	}

	row := func(label, value string) string {
		return simLabelStyle.Render(label) + " " + StyleValue.Render(value) + "\n"
	}
	var panel strings.Builder
	panel.WriteString(row("status", status))
	panel.WriteString(row("frame", fmt.Sprintf("%d/%d", s.frame, s.force.maxFrames)))
	panel.WriteString(row("max move", fmt.Sprintf("%.2f", s.moved)))
	panel.WriteString(row("viewport", fmt.Sprintf("%g, %g @ %.2fx", s.vp.X, s.vp.Y, s.vp.Zoom)))
	panel.WriteString(row("tables", fmt.Sprintf("%d visible of %d", met.VisibleNodes, met.TotalNodes)))
	panel.WriteString(row("fps", fmt.Sprintf("%.0f", met.FPS)))
	panel.WriteString(row("render", met.LastRenderTime.Round(time.Microsecond).String()))
	if met.MemoryUsageMB != nil {
		panel.WriteString(row("memory", fmt.Sprintf("%.1f MB", *met.MemoryUsageMB)))
	}
	if m.groups > 0 {
		panel.WriteString(row("groups", fmt.Sprint(m.groups)))
	}
	b.WriteString(simPanelStyle.Render(strings.TrimSuffix(panel.String(), "\n")))
	b.WriteString("\n")

	if recs := s.mgr.Recommendations(); len(recs) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("Recommendations"))
		b.WriteString("\n")
		b.WriteString(bulletList(recs))
	}
	if m.err != nil {
		b.WriteString("\n" + styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	}
	return b.String()
}
