package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const tmpPrefix = ".tmp-"

// Filesystem keeps each dataset as a file directly under root.
type Filesystem struct {
	root string
}

// NewFilesystem returns a filesystem backend rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) Driver() Driver { return DriverFilesystem }

// Root returns the directory datasets are stored in.
func (f *Filesystem) Root() string { return f.root }

// sanitizeName rejects names that could escape root. Dataset names are flat.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty dataset name")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid dataset name %q", name)
	}
	if strings.HasPrefix(name, tmpPrefix) {
		return "", fmt.Errorf("reserved dataset name %q", name)
	}
	return name, nil
}

func (f *Filesystem) pathFor(name string) (string, error) {
	n, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.root, n), nil
}

func (f *Filesystem) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := f.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, ioErr("get", name, err)
	}
	return data, nil
}

// Put writes to a temp file and renames it into place so readers never see a
// partially written dataset.
func (f *Filesystem) Put(ctx context.Context, name string, data []byte) error {
	path, err := f.pathFor(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.root, tmpPrefix+"*")
	if err != nil {
		return ioErr("put", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ioErr("put", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ioErr("put", name, err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("put", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return ioErr("put", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ioErr("put", name, err)
	}
	return nil
}

func (f *Filesystem) Append(ctx context.Context, name string, data []byte) error {
	path, err := f.pathFor(name)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return ioErr("append", name, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return ioErr("append", name, err)
	}
	if err := file.Close(); err != nil {
		return ioErr("append", name, err)
	}
	return nil
}

func (f *Filesystem) Stat(ctx context.Context, name string) (Info, error) {
	path, err := f.pathFor(name)
	if err != nil {
		return Info{}, err
	}
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, ErrNotExist
	}
	if err != nil {
		return Info{}, ioErr("stat", name, err)
	}
	return Info{Name: name, Size: st.Size(), ModTime: st.ModTime().UTC()}, nil
}

func (f *Filesystem) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, ioErr("list", f.root, err)
	}
	var out []Info
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: st.Size(), ModTime: st.ModTime().UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Filesystem) Ping(ctx context.Context) error {
	st, err := os.Stat(f.root)
	if err != nil {
		return ioErr("ping", f.root, err)
	}
	if !st.IsDir() {
		return ioErr("ping", f.root, fmt.Errorf("not a directory"))
	}
	return nil
}
