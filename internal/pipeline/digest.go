package pipeline

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

type digester struct {
	h   hash.Hash
	buf [8]byte
}

func newDigester() *digester { return &digester{h: sha256.New()} }

func (d *digester) float64s(v []float64) *digester {
	for _, f := range v {
		binary.LittleEndian.PutUint64(d.buf[:], math.Float64bits(f))
		d.h.Write(d.buf[:])
	}
	return d
}

func (d *digester) int32s(v []int32) *digester {
	for _, n := range v {
		binary.LittleEndian.PutUint32(d.buf[:4], uint32(n))
		d.h.Write(d.buf[:4])
	}
	return d
}

func (d *digester) bytes(n int, at func(i int) byte) *digester {
	out := make([]byte, n)
	for i := range out {
		out[i] = at(i)
	}
	d.h.Write(out)
	return d
}

func (d *digester) sum() string { return hex.EncodeToString(d.h.Sum(nil)) }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Digests returns a SHA-256 per output map. Identical configs produce
// identical digests.
func (r *Result) Digests() map[string]string {
	n := r.Shape.Size
	topo, hy, eco, tr, nav := r.Topography, r.Hydrology, r.Ecology, r.Trails, r.Navigation

	out := map[string]string{
		"height":        newDigester().float64s(topo.Height).sum(),
		"slope":         newDigester().float64s(topo.Slope).sum(),
		"landform":      newDigester().bytes(n, func(i int) byte { return byte(topo.Landform[i]) }).sum(),
		"flowDirection": newDigester().bytes(n, func(i int) byte { return byte(hy.FlowDirection[i]) }).sum(),
		"flowAccum":     newDigester().int32s(hy.FlowAccum).sum(),
		"basinMinIdx":   newDigester().int32s(hy.Watershed.BasinMinIdx).sum(),
		"basinSpillH":   newDigester().float64s(hy.Watershed.BasinSpillH).sum(),
		"peakMaxIdx":    newDigester().int32s(hy.Watershed.PeakMaxIdx).sum(),
		"peakSaddleH":   newDigester().float64s(hy.Watershed.PeakSaddleH).sum(),
		"water":         newDigester().bytes(n, func(i int) byte { return byte(hy.Water[i]) }).sum(),
		"lakeId":        newDigester().int32s(hy.LakeID).sum(),
		"moisture":      newDigester().float64s(hy.Moisture).sum(),
		"treeDensity":   newDigester().float64s(eco.TreeDensity).sum(),
		"obstruction":   newDigester().float64s(eco.Obstruction).sum(),
		"biome":         newDigester().bytes(n, func(i int) byte { return byte(eco.Biome[i]) }).sum(),
		"trailCost":     newDigester().float64s(tr.Cost).sum(),
		"gameTrail":     newDigester().bytes(n, func(i int) byte { return boolByte(tr.GameTrail[i]) }).sum(),
		"gameTrailId":   newDigester().int32s(tr.GameTrailID).sum(),
		"moveCost":      newDigester().float64s(nav.MoveCost).sum(),
		"cliffEdge":     newDigester().bytes(n, func(i int) byte { return byte(nav.CliffEdge[i]) }).sum(),
		"followable":    newDigester().bytes(n, func(i int) byte { return byte(nav.Followable[i]) }).sum(),
	}
	pass := newDigester()
	for _, p := range nav.Passability {
		binary.LittleEndian.PutUint16(pass.buf[:2], uint16(p))
		pass.h.Write(pass.buf[:2])
	}
	out["passability"] = pass.sum()
	return out
}

// DigestNames returns the digest keys in sorted order.
func DigestNames(d map[string]string) []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
