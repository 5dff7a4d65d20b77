package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type dirStorage struct {
	root string
}

// NewDir serves fixtures from files under root. Keys are slash-separated paths relative to root.
func NewDir(root string) (Storage, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fixture dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("fixture dir: %s is not a directory", root)
	}
	return &dirStorage{root: root}, nil
}

func (d *dirStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	if clean == string(filepath.Separator) || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *dirStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	p, err := d.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ObjectInfo{}, err
	}
	f, err := os.Create(p)
	if err != nil {
		return ObjectInfo{}, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: key, Size: n, ContentType: opt.ContentType, LastModified: st.ModTime()}, nil
}

func (d *dirStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return f, ObjectInfo{Key: key, Size: st.Size(), LastModified: st.ModTime()}, nil
}
