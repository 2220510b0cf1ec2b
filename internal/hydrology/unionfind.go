package hydrology

// unionFind is an arena-backed disjoint set over tile indices. Each root
// carries the index of the extremum (lowest or highest tile) of its set.
type unionFind struct {
	parent  []int32
	extreme []int32
}

func newUnionFind(size int) *unionFind {
	uf := &unionFind{
		parent:  make([]int32, size),
		extreme: make([]int32, size),
	}
	for i := range uf.parent {
		uf.parent[i] = -1
		uf.extreme[i] = int32(i)
	}
	return uf
}

func (uf *unionFind) activate(i int) {
	uf.parent[i] = int32(i)
	uf.extreme[i] = int32(i)
}

func (uf *unionFind) active(i int) bool { return uf.parent[i] >= 0 }

// find returns the root of i, halving the path as it walks.
func (uf *unionFind) find(i int) int {
	x := int32(i)
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return int(x)
}

// attach makes winner the root of loser's set. Both must be roots.
func (uf *unionFind) attach(loser, winner int) {
	uf.parent[loser] = int32(winner)
}
