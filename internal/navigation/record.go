package navigation

import "terrainkit/internal/grid"

// TileRecord is the exported navigation view of one tile.
type TileRecord struct {
	MoveCost    float64           `json:"moveCost"`
	Followable  []string          `json:"followable"`
	Passability map[string]string `json:"passability"`
	GameTrailID *int              `json:"gameTrailId,omitempty"`
}

// Record builds the export record for tile i.
func (n *Navigation) Record(i int) (TileRecord, error) {
	if i < 0 || i >= n.shape.Size {
		return TileRecord{}, grid.InvariantAt(stageNavigation, "tile-in-bounds", i, "tile outside %dx%d grid", n.shape.Width, n.shape.Height)
	}
	dirs, err := n.Passability[i].Unpack()
	if err != nil {
		return TileRecord{}, err
	}
	rec := TileRecord{
		MoveCost:    n.MoveCost[i],
		Followable:  n.Followable[i].Names(),
		Passability: make(map[string]string, len(dirs)),
	}
	for _, d := range grid.Dirs8 {
		rec.Passability[d.String()] = dirs[d].String()
	}
	if id := n.GameTrailID[i]; id >= 0 {
		v := int(id)
		rec.GameTrailID = &v
	}
	return rec, nil
}
