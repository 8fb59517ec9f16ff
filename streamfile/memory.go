package streamfile

import "fmt"

// Memory is a Streamfile backed by an in-memory byte slice. Used for
// decompressed subfiles (zstd/zlib-compressed chunks) and in tests, where
// building a real OSFile would be wasteful ceremony.
type Memory struct {
	data []byte
	name string
}

// NewMemory wraps data as a named in-memory Streamfile.
func NewMemory(name string, data []byte) *Memory {
	return &Memory{data: data, name: name}
}

func (m *Memory) Read(dst []byte, offset int64) (int, error) {
	if offset < 0 || offset >= int64(len(m.data)) {
		return 0, nil
	}
	n := copy(dst, m.data[offset:])
	return n, nil
}

func (m *Memory) Size() int64 { return int64(len(m.data)) }
func (m *Memory) Name() string { return m.name }

func (m *Memory) Open(name string) (Streamfile, error) {
	if name == m.name {
		return NewMemory(m.name, m.data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (m *Memory) Close() error { return nil }
