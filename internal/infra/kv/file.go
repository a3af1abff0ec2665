package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-chat-client/internal/domain"
	"ai-chat-client/internal/domain/ports/storage"
)

var _ storage.KeyValue = (*File)(nil)

// File persists each namespace as a document in a directory — the local
// single-user analog of the browser's localStorage.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// path maps a namespace key to a filename; anything outside [A-Za-z0-9._-]
// is replaced so a key can never escape the directory.
func (f *File) path(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(f.dir, sanitized+".json")
}

func (f *File) Get(ctx context.Context, key string) (string, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	// Write-then-rename keeps the previous snapshot intact if we crash
	// mid-write.
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

func (f *File) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
