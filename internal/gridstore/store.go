package gridstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"terrainkit/internal/grid"
)

// Kind is the element type of a stored grid.
type Kind byte

const (
	kindDelete Kind = 0
	kindShape  Kind = 1

	KindFloat64 Kind = 2
	KindInt32   Kind = 3
	KindUint8   Kind = 4
	KindUint16  Kind = 5
)

func (k Kind) elemSize() int {
	switch k {
	case KindFloat64:
		return 8
	case KindInt32:
		return 4
	case KindUint16:
		return 2
	case KindUint8:
		return 1
	default:
		return 0
	}
}

// headerSize covers kind, name length and payload size.
const headerSize = 9

type recordMeta struct {
	kind   Kind
	offset int64 // start of the payload
	size   uint32
}

// Store is an append-only file of named flat grids sharing one shape. Later
// records for a name replace earlier ones.
type Store struct {
	file    *os.File
	mu      sync.RWMutex
	shape   grid.Shape
	records map[string]recordMeta
}

// Create truncates path and starts a store for shape.
func Create(path string, shape grid.Shape) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create grid directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create grid file: %w", err)
	}
	s := &Store{file: f, shape: shape, records: make(map[string]recordMeta)}
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(shape.Width))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(shape.Height))
	if err := s.append(kindShape, "", payload); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Open indexes an existing store.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	s := &Store{file: f, records: make(map[string]recordMeta)}
	if err := s.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind grid file: %w", err)
	}

	header := make([]byte, headerSize)
	var offset int64
	sawShape := false
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated grid header: %w", err)
			}
			return fmt.Errorf("read grid header: %w", err)
		}
		kind := Kind(header[0])
		nameLen := binary.LittleEndian.Uint32(header[1:5])
		size := binary.LittleEndian.Uint32(header[5:9])
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(s.file, name); err != nil {
			return fmt.Errorf("read grid name: %w", err)
		}
		payloadOffset := offset + headerSize + int64(nameLen)
		offset = payloadOffset + int64(size)

		switch kind {
		case kindShape:
			payload := make([]byte, size)
			if size != 8 {
				return fmt.Errorf("shape record has %d bytes", size)
			}
			if _, err := io.ReadFull(s.file, payload); err != nil {
				return fmt.Errorf("read shape: %w", err)
			}
			shape, err := grid.NewShape(int(binary.LittleEndian.Uint32(payload[0:4])), int(binary.LittleEndian.Uint32(payload[4:8])))
			if err != nil {
				return fmt.Errorf("decode shape: %w", err)
			}
			s.shape = shape
			sawShape = true
			continue
		case kindDelete:
			delete(s.records, string(name))
		default:
			if kind.elemSize() == 0 {
				return fmt.Errorf("grid %q has unknown kind %d", name, kind)
			}
			s.records[string(name)] = recordMeta{kind: kind, offset: payloadOffset, size: size}
		}
		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
	}
	if !sawShape {
		return fmt.Errorf("grid file has no shape record")
	}
	return nil
}

func (s *Store) Shape() grid.Shape { return s.shape }

// Names lists the stored grids in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) append(kind Kind, name string, payload []byte) error {
	header := make([]byte, headerSize)
	header[0] = byte(kind)
	binary.LittleEndian.PutUint32(header[1:5], uint32(len(name)))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(payload)))

	s.mu.Lock()
	defer s.mu.Unlock()

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek grid end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.file.Write([]byte(name)); err != nil {
		return fmt.Errorf("write name: %w", err)
	}
	if _, err := s.file.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	switch kind {
	case kindShape:
	case kindDelete:
		delete(s.records, name)
	default:
		s.records[name] = recordMeta{kind: kind, offset: offset + headerSize + int64(len(name)), size: uint32(len(payload))}
	}
	return nil
}

func (s *Store) put(name string, kind Kind, n int, encode func(buf []byte)) error {
	if name == "" {
		return fmt.Errorf("grid name cannot be empty")
	}
	if err := grid.CheckLength("gridstore", name, n, s.shape.Size); err != nil {
		return err
	}
	payload := make([]byte, n*kind.elemSize())
	encode(payload)
	return s.append(kind, name, payload)
}

func (s *Store) PutFloat64s(name string, v []float64) error {
	return s.put(name, KindFloat64, len(v), func(buf []byte) {
		for i, f := range v {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
		}
	})
}

func (s *Store) PutInt32s(name string, v []int32) error {
	return s.put(name, KindInt32, len(v), func(buf []byte) {
		for i, n := range v {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(n))
		}
	})
}

func (s *Store) PutUint16s(name string, v []uint16) error {
	return s.put(name, KindUint16, len(v), func(buf []byte) {
		for i, n := range v {
			binary.LittleEndian.PutUint16(buf[i*2:], n)
		}
	})
}

func (s *Store) PutBytes(name string, v []byte) error {
	return s.put(name, KindUint8, len(v), func(buf []byte) { copy(buf, v) })
}

// Delete appends a tombstone for name.
func (s *Store) Delete(name string) error {
	return s.append(kindDelete, name, nil)
}

func (s *Store) load(name string, kind Kind) ([]byte, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[name]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if meta.kind != kind {
		return nil, false, fmt.Errorf("grid %q has kind %d, not %d", name, meta.kind, kind)
	}
	payload := make([]byte, meta.size)
	if _, err := s.file.ReadAt(payload, meta.offset); err != nil {
		return nil, false, fmt.Errorf("read grid %q: %w", name, err)
	}
	return payload, true, nil
}

func (s *Store) Float64s(name string) ([]float64, bool, error) {
	payload, ok, err := s.load(name, KindFloat64)
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]float64, len(payload)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return out, true, nil
}

func (s *Store) Int32s(name string) ([]int32, bool, error) {
	payload, ok, err := s.load(name, KindInt32)
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]int32, len(payload)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return out, true, nil
}

func (s *Store) Uint16s(name string) ([]uint16, bool, error) {
	payload, ok, err := s.load(name, KindUint16)
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]uint16, len(payload)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(payload[i*2:])
	}
	return out, true, nil
}

func (s *Store) Bytes(name string) ([]byte, bool, error) {
	return s.load(name, KindUint8)
}

// Close syncs and closes the file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("sync grid file: %w", err)
	}
	return s.file.Close()
}
