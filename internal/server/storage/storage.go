// Package storage persists uploaded artifacts as regular files directly
// under a single upload root.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/privscan/internal/common"
	"github.com/dmitrijs2005/privscan/internal/filex"
)

// Artifact is a destination file being written by exactly one request.
// Either Commit or Abort must be called once writing stops.
type Artifact interface {
	io.Writer
	// Commit flushes the file to stable storage and closes it.
	// On failure the partial file is removed.
	Commit() error
	// Abort closes the file and removes it.
	Abort() error
}

// Store creates and reads artifacts by client-supplied name.
type Store interface {
	Create(name string) (Artifact, error)
	Open(name string) (*os.File, error)
}

type DiskStore struct {
	root string
}

// NewDiskStore makes sure root exists and returns a store writing into it.
func NewDiskStore(root string) (*DiskStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("upload root: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) resolve(name string) (string, error) {
	if err := filex.ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, name)
	if filepath.Dir(path) != s.root {
		return "", fmt.Errorf("%w: %q resolves outside upload root", common.ErrInvalidFilename, name)
	}
	return path, nil
}

// Create opens root/name for writing, truncating any previous artifact.
func (s *DiskStore) Create(name string) (Artifact, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", common.ErrServerIO, name, err)
	}

	return &diskArtifact{f: f, path: path}, nil
}

// Open returns a finalized artifact for reading.
func (s *DiskStore) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

type diskArtifact struct {
	f      *os.File
	path   string
	closed bool
}

func (a *diskArtifact) Write(p []byte) (int, error) {
	n, err := a.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: write: %w", common.ErrServerIO, err)
	}
	return n, nil
}

func (a *diskArtifact) Commit() error {
	if a.closed {
		return errors.New("artifact already closed")
	}

	if err := a.f.Sync(); err != nil {
		_ = a.Abort()
		return fmt.Errorf("%w: sync: %w", common.ErrServerIO, err)
	}

	a.closed = true
	if err := a.f.Close(); err != nil {
		_ = os.Remove(a.path)
		return fmt.Errorf("%w: close: %w", common.ErrServerIO, err)
	}
	return nil
}

func (a *diskArtifact) Abort() error {
	if !a.closed {
		a.closed = true
		_ = a.f.Close()
	}
	if err := os.Remove(a.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove partial artifact: %w", common.ErrServerIO, err)
	}
	return nil
}
