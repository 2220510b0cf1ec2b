package trails

import "sync/atomic"

// SearchProfiler captures instrumentation hooks for trail routing.
type SearchProfiler interface {
	RecordNodeExpanded()
	RecordEdgeRelaxed()
	RecordRouteFound(length int)
	RecordRouteSkipped()
}

// SearchMetrics accumulates profiling counters for trail planning.
type SearchMetrics struct {
	nodesExpanded atomic.Int64
	edgesRelaxed  atomic.Int64
	routesFound   atomic.Int64
	routesSkipped atomic.Int64
	pathTiles     atomic.Int64
}

// MetricsSnapshot captures a point-in-time copy of search metrics.
type MetricsSnapshot struct {
	NodesExpanded int64 `json:"nodesExpanded"`
	EdgesRelaxed  int64 `json:"edgesRelaxed"`
	RoutesFound   int64 `json:"routesFound"`
	RoutesSkipped int64 `json:"routesSkipped"`
	PathTiles     int64 `json:"pathTiles"`
}

// Profiler returns a SearchProfiler backed by this metric set.
func (m *SearchMetrics) Profiler() SearchProfiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

// Reset zeroes all counters.
func (m *SearchMetrics) Reset() {
	if m == nil {
		return
	}
	m.nodesExpanded.Store(0)
	m.edgesRelaxed.Store(0)
	m.routesFound.Store(0)
	m.routesSkipped.Store(0)
	m.pathTiles.Store(0)
}

// Snapshot captures the current counter values.
func (m *SearchMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		NodesExpanded: m.nodesExpanded.Load(),
		EdgesRelaxed:  m.edgesRelaxed.Load(),
		RoutesFound:   m.routesFound.Load(),
		RoutesSkipped: m.routesSkipped.Load(),
		PathTiles:     m.pathTiles.Load(),
	}
}

type metricsProfiler SearchMetrics

func (m *metricsProfiler) RecordNodeExpanded() {
	(*SearchMetrics)(m).nodesExpanded.Add(1)
}

func (m *metricsProfiler) RecordEdgeRelaxed() {
	(*SearchMetrics)(m).edgesRelaxed.Add(1)
}

func (m *metricsProfiler) RecordRouteFound(length int) {
	metrics := (*SearchMetrics)(m)
	metrics.routesFound.Add(1)
	metrics.pathTiles.Add(int64(length))
}

func (m *metricsProfiler) RecordRouteSkipped() {
	(*SearchMetrics)(m).routesSkipped.Add(1)
}
