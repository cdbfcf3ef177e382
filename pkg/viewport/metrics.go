package viewport

import "time"

// fpsWindow is the length of the rolling window FPS is sampled over.
const fpsWindow = time.Second

// Metrics is a snapshot of render performance.
type Metrics struct {
	TotalNodes     int           `json:"totalNodes"`
	VisibleNodes   int           `json:"visibleNodes"`
	RenderedNodes  int           `json:"renderedNodes"`
	FPS            float64       `json:"fps"`
	LastRenderTime time.Duration `json:"lastRenderTime"`
	// MemoryUsageMB is nil when heap statistics are unavailable.
	MemoryUsageMB *float64 `json:"memoryUsageMB,omitempty"`
}

// StartRenderCycle marks the start of a frame.
func (m *Manager) StartRenderCycle() {
	m.renderStart = m.clock()
	m.frameCount++
}

// EndRenderCycle marks the end of the frame started by StartRenderCycle and
// records its node counts. Once per second the number of frames started in
// the window becomes the FPS sample.
func (m *Manager) EndRenderCycle(total, visible, rendered int) {
	now := m.clock()
	m.metrics.LastRenderTime = now.Sub(m.renderStart)

	if now.Sub(m.windowStart) >= fpsWindow {
		m.metrics.FPS = float64(m.frameCount)
		m.frameCount = 0
		m.windowStart = now
	}

	m.metrics.TotalNodes = total
	m.metrics.VisibleNodes = visible
	m.metrics.RenderedNodes = rendered

	m.metrics.MemoryUsageMB = nil
	if m.memory != nil {
		if mb, ok := m.memory(); ok {
			m.metrics.MemoryUsageMB = &mb
		}
	}
}

// Metrics returns a copy of the current metrics.
func (m *Manager) Metrics() Metrics {
	out := m.metrics
	if m.metrics.MemoryUsageMB != nil {
		mb := *m.metrics.MemoryUsageMB
		out.MemoryUsageMB = &mb
	}
	return out
}

// GroupCount returns the number of cached groups.
func (m *Manager) GroupCount() int { return len(m.groups) }
