// Package storage provides the byte store the report pipeline reads its
// inputs from and writes its outputs to.
//
// Missing objects are reported with an error that matches fs.ErrNotExist.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store reads and writes whole objects addressed by path.
type Store interface {
	// ReadBytes returns the content stored at path.
	ReadBytes(ctx context.Context, path string) ([]byte, error)

	// WriteBytes stores data at path, replacing any previous content.
	// Readers never observe a partially written object.
	WriteBytes(ctx context.Context, path string, data []byte) error
}

// filePerm is the permission of files written by FS.
const filePerm = 0600

// dirPerm is the permission of directories created by FS.
const dirPerm = 0750

// FS is a Store backed by the local file system.
type FS struct {
	root string
}

// NewFS returns a file system store. Relative paths are resolved against
// root; an empty root means the working directory.
func NewFS(root string) *FS {
	return &FS{root: root}
}

// Resolve returns the file system path for path.
func (s *FS) Resolve(path string) string {
	if s.root == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}

// ReadBytes implements Store.
func (s *FS) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes implements Store. The data goes to a temporary file in the
// target directory which is then renamed over the target.
func (s *FS) WriteBytes(ctx context.Context, path string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.Resolve(path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = f.Chmod(filePerm); err != nil {
		_ = f.Close() //nolint:errcheck // chmod error takes precedence
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// ReadBytes implements Store. The returned slice is a copy.
func (m *Memory) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteBytes implements Store.
func (m *Memory) WriteBytes(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[path] = append([]byte(nil), data...)
	return nil
}

// Paths returns the stored paths in sorted order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
