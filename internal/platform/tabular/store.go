package tabular

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
)

// WritePath names how a save reached storage.
type WritePath string

const (
	PathCreated  WritePath = "created"
	PathAppended WritePath = "appended"
	PathReplaced WritePath = "replaced"
)

// Store implements append-or-create and replace-or-create over a storage
// backend. Every read-modify-write on one dataset is serialized within the
// process; separate processes sharing a backend still race.
type Store struct {
	backend storage.Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) Backend() storage.Backend { return s.backend }

func (s *Store) lock(dataset string) func() {
	s.mu.Lock()
	l, ok := s.locks[dataset]
	if !ok {
		l = &sync.Mutex{}
		s.locks[dataset] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Load reads a whole dataset. A dataset that does not exist yields the zero
// Table and no error.
func (s *Store) Load(ctx context.Context, dataset string) (*Table, error) {
	t, _, err := s.load(ctx, dataset)
	return t, err
}

// Exists reports whether dataset has been written.
func (s *Store) Exists(ctx context.Context, dataset string) (bool, error) {
	return storage.Exists(ctx, s.backend, dataset)
}

func (s *Store) load(ctx context.Context, dataset string) (*Table, []byte, error) {
	raw, err := s.backend.Get(ctx, dataset)
	if errors.Is(err, storage.ErrNotExist) {
		return &Table{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", dataset, err)
	}
	t, err := Decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", dataset, err)
	}
	return t, raw, nil
}

// AppendOrCreate writes rec as a new row. A missing or empty dataset is
// created with rec's keys as the header. Otherwise the row is placed under
// the existing header by column name; fields the header lacks widen it.
func (s *Store) AppendOrCreate(ctx context.Context, dataset string, rec Record) (WritePath, error) {
	unlock := s.lock(dataset)
	defer unlock()

	t, raw, err := s.load(ctx, dataset)
	if err != nil {
		return "", err
	}
	return s.appendLocked(ctx, dataset, t, raw, rec)
}

func (s *Store) appendLocked(ctx context.Context, dataset string, t *Table, raw []byte, rec Record) (WritePath, error) {
	if len(t.Columns) == 0 {
		t = &Table{Columns: rec.Keys()}
		t.Rows = append(t.Rows, t.rowFor(rec))
		if err := s.put(ctx, dataset, t); err != nil {
			return "", err
		}
		return PathCreated, nil
	}

	widened := t.widen(rec)
	row := t.rowFor(rec)

	ap, native := s.backend.(storage.Appender)
	if native && !widened && bytes.HasSuffix(raw, []byte("\n")) {
		data, err := encodeRows(row)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", dataset, err)
		}
		if err := ap.Append(ctx, dataset, data); err != nil {
			return "", fmt.Errorf("append %s: %w", dataset, err)
		}
		return PathAppended, nil
	}

	t.Rows = append(t.Rows, row)
	if err := s.put(ctx, dataset, t); err != nil {
		return "", err
	}
	return PathAppended, nil
}

// ReplaceOrCreate overwrites the first row whose matchKey equals matchValue
// with rec, merging by column name: columns rec lacks become blank and fields
// the header lacks widen it. With no matching row rec is appended instead.
// The dataset is re-read under the dataset lock and persisted whole.
func (s *Store) ReplaceOrCreate(ctx context.Context, dataset, matchKey, matchValue string, rec Record) (WritePath, error) {
	unlock := s.lock(dataset)
	defer unlock()

	t, raw, err := s.load(ctx, dataset)
	if err != nil {
		return "", err
	}
	i := t.Find(matchKey, matchValue)
	if i < 0 {
		return s.appendLocked(ctx, dataset, t, raw, rec)
	}

	t.widen(rec)
	t.Rows[i] = t.rowFor(rec)
	if err := s.put(ctx, dataset, t); err != nil {
		return "", err
	}
	return PathReplaced, nil
}

func (s *Store) put(ctx context.Context, dataset string, t *Table) error {
	data, err := Encode(t)
	if err != nil {
		return fmt.Errorf("encode %s: %w", dataset, err)
	}
	if err := s.backend.Put(ctx, dataset, data); err != nil {
		return fmt.Errorf("write %s: %w", dataset, err)
	}
	return nil
}
