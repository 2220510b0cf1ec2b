package trails

import (
	"container/heap"
	"math"

	"terrainkit/internal/grid"
)

// FindLeastCostPath returns the cheapest 8-connected route from start to end
// inclusive, or nil when either endpoint is impassable or end cannot be
// reached. Entering a tile orthogonally costs that tile's cost; a diagonal
// step costs diagWeight times the mean of both tile costs. A predecessor is
// replaced only by a route cheaper by more than tieEps, and the open set is
// ordered by (cost, y, x), so equal-cost ties keep the first route found.
func FindLeastCostPath(shape grid.Shape, cost []float64, start, end int, diagWeight, tieEps float64) []int {
	path, _ := search(shape, cost, start, end, diagWeight, tieEps, nil)
	return path
}

func search(shape grid.Shape, cost []float64, start, end int, diagWeight, tieEps float64, profiler SearchProfiler) ([]int, float64) {
	if start < 0 || start >= shape.Size || end < 0 || end >= shape.Size {
		return nil, 0
	}
	if cost[start] >= Impassable || cost[end] >= Impassable {
		return nil, 0
	}
	if start == end {
		return []int{start}, 0
	}

	dist := make([]float64, shape.Size)
	prev := make([]int32, shape.Size)
	closed := make([]bool, shape.Size)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[start] = 0

	open := &tileQueue{}
	heap.Init(open)
	heap.Push(open, tileEntry{index: start, cost: 0})

	for open.Len() > 0 {
		current := heap.Pop(open).(tileEntry)
		cur := current.index
		if closed[cur] {
			continue
		}
		closed[cur] = true
		if profiler != nil {
			profiler.RecordNodeExpanded()
		}
		if cur == end {
			return reconstructTiles(prev, end), dist[end]
		}

		for _, d := range grid.Dirs8 {
			n, ok := shape.Neighbor(cur, d)
			if !ok || closed[n] || cost[n] >= Impassable {
				continue
			}
			step := cost[n]
			if d.Diagonal() {
				step = diagWeight * (cost[cur] + cost[n]) / 2
			}
			tentative := dist[cur] + step
			if !(tentative < dist[n]-tieEps) {
				continue
			}
			dist[n] = tentative
			prev[n] = int32(cur)
			if profiler != nil {
				profiler.RecordEdgeRelaxed()
			}
			heap.Push(open, tileEntry{index: n, cost: tentative})
		}
	}
	return nil, 0
}

func reconstructTiles(prev []int32, end int) []int {
	var path []int
	for cur := int32(end); cur >= 0; cur = prev[cur] {
		path = append(path, int(cur))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type tileEntry struct {
	index int
	cost  float64
}

// tileQueue orders by cost, then row-major index, which is (y, x) order.
type tileQueue []tileEntry

func (q tileQueue) Len() int { return len(q) }
func (q tileQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].index < q[j].index
}
func (q tileQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *tileQueue) Push(x any) {
	*q = append(*q, x.(tileEntry))
}

func (q *tileQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
