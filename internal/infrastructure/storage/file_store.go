// Package storage keeps uploaded document files.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileStore persists opaque file contents and hands back a reference that
// the document registry records.
type FileStore interface {
	Save(ctx context.Context, prefix, ext string, content []byte) (string, error)
	Open(ctx context.Context, ref string) ([]byte, error)
	Remove(ctx context.Context, ref string) error
}

type aferoFileStore struct {
	fs afero.Fs
}

// NewFileStore stores files on fs. Production passes a base-path filesystem
// rooted at the upload directory; tests pass afero.NewMemMapFs().
func NewFileStore(fs afero.Fs) FileStore {
	return &aferoFileStore{fs: fs}
}

// NewDiskFileStore roots a store at dir, creating it when missing.
func NewDiskFileStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return NewFileStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Save writes content under a fresh name so a replaced upload never
// overwrites the file still referenced by the previous slot state.
func (s *aferoFileStore) Save(ctx context.Context, prefix, ext string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	ref := path.Join(prefix, uuid.NewString()+ext)

	if err := s.fs.MkdirAll(path.Dir(ref), 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, ref, content, 0o640); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return ref, nil
}

func (s *aferoFileStore) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return afero.ReadFile(s.fs, ref)
}

func (s *aferoFileStore) Remove(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.fs.Remove(ref); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
