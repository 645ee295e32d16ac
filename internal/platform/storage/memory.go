package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process backend for tests and throwaway runs.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memFile
	now   func() time.Time
}

type memFile struct {
	data    []byte
	modTime time.Time
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string]memFile), now: time.Now}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), f.data...), nil
}

func (m *Memory) Put(ctx context.Context, name string, data []byte) error {
	if _, err := sanitizeName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = memFile{data: append([]byte(nil), data...), modTime: m.now().UTC()}
	return nil
}

func (m *Memory) Append(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[name]
	if !ok {
		return ErrNotExist
	}
	buf := make([]byte, 0, len(f.data)+len(data))
	buf = append(buf, f.data...)
	buf = append(buf, data...)
	m.files[name] = memFile{data: buf, modTime: m.now().UTC()}
	return nil
}

func (m *Memory) Stat(ctx context.Context, name string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return Info{}, ErrNotExist
	}
	return Info{Name: name, Size: int64(len(f.data)), ModTime: f.modTime}, nil
}

func (m *Memory) List(ctx context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.files))
	for name, f := range m.files {
		out = append(out, Info{Name: name, Size: int64(len(f.data)), ModTime: f.modTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
