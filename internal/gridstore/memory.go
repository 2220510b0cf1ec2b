package gridstore

import (
	"fmt"
	"sort"
	"sync"

	"terrainkit/internal/grid"
)

// Writer receives named grids. Both the file store and Memory implement it.
type Writer interface {
	Shape() grid.Shape
	PutFloat64s(name string, v []float64) error
	PutInt32s(name string, v []int32) error
	PutUint16s(name string, v []uint16) error
	PutBytes(name string, v []byte) error
	Close() error
}

var (
	_ Writer = (*Store)(nil)
	_ Writer = (*Memory)(nil)
)

type memoryGrid struct {
	kind Kind
	data any
}

// Memory keeps grids in process. Values are copied on the way in and out.
type Memory struct {
	mu    sync.RWMutex
	shape grid.Shape
	grids map[string]memoryGrid
}

func NewMemory(shape grid.Shape) *Memory {
	return &Memory{shape: shape, grids: make(map[string]memoryGrid)}
}

func (m *Memory) Shape() grid.Shape { return m.shape }

func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.grids))
	for name := range m.grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Memory) PutFloat64s(name string, v []float64) error {
	return putMemory(m, name, KindFloat64, v)
}

func (m *Memory) PutInt32s(name string, v []int32) error {
	return putMemory(m, name, KindInt32, v)
}

func (m *Memory) PutUint16s(name string, v []uint16) error {
	return putMemory(m, name, KindUint16, v)
}

func (m *Memory) PutBytes(name string, v []byte) error {
	return putMemory(m, name, KindUint8, v)
}

func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	delete(m.grids, name)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Float64s(name string) ([]float64, bool, error) {
	return getMemory[float64](m, name, KindFloat64)
}

func (m *Memory) Int32s(name string) ([]int32, bool, error) {
	return getMemory[int32](m, name, KindInt32)
}

func (m *Memory) Uint16s(name string) ([]uint16, bool, error) {
	return getMemory[uint16](m, name, KindUint16)
}

func (m *Memory) Bytes(name string) ([]byte, bool, error) {
	return getMemory[byte](m, name, KindUint8)
}

func (m *Memory) Close() error { return nil }

func putMemory[T any](m *Memory, name string, kind Kind, v []T) error {
	if err := grid.CheckLength("gridstore", name, len(v), m.shape.Size); err != nil {
		return err
	}
	dup := make([]T, len(v))
	copy(dup, v)
	m.mu.Lock()
	m.grids[name] = memoryGrid{kind: kind, data: dup}
	m.mu.Unlock()
	return nil
}

func getMemory[T any](m *Memory, name string, kind Kind) ([]T, bool, error) {
	m.mu.RLock()
	g, ok := m.grids[name]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if g.kind != kind {
		return nil, false, fmt.Errorf("grid %q has kind %d, not %d", name, g.kind, kind)
	}
	src := g.data.([]T)
	dup := make([]T, len(src))
	copy(dup, src)
	return dup, true, nil
}
