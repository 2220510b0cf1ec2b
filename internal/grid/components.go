package grid

// Component is a connected group of tiles. Tiles are listed in BFS
// visitation order starting from the row-major first tile.
type Component struct {
	ID    int
	Tiles []int
}

// Components labels the connected regions of mask using the given
// neighbourhood. Components are numbered in row-major order of their first
// tile; labels holds the component id per tile or -1 outside the mask.
func Components(shape Shape, mask []bool, dirs []Dir8) ([]Component, []int32) {
	labels := make([]int32, shape.Size)
	for i := range labels {
		labels[i] = -1
	}
	var comps []Component
	queue := make([]int, 0, 64)
	for start := 0; start < shape.Size; start++ {
		if !mask[start] || labels[start] >= 0 {
			continue
		}
		id := len(comps)
		labels[start] = int32(id)
		queue = append(queue[:0], start)
		tiles := []int{}
		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			tiles = append(tiles, cur)
			for _, d := range dirs {
				n, ok := shape.Neighbor(cur, d)
				if !ok || !mask[n] || labels[n] >= 0 {
					continue
				}
				labels[n] = int32(id)
				queue = append(queue, n)
			}
		}
		comps = append(comps, Component{ID: id, Tiles: tiles})
	}
	return comps, labels
}
