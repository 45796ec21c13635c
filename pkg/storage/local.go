package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalRoutePrefix is where the API serves files written by LocalStore.
const LocalRoutePrefix = "/videos"

// LocalStore keeps objects in a directory; meant for development.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory the files are written to.
func (l *LocalStore) Dir() string {
	return l.dir
}

func (l *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}

func (l *LocalStore) Upload(_ context.Context, name string, data []byte, _ string, overwrite bool) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("object %s already exists", name)
		}
		return fmt.Errorf("open %s: %w", p, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return f.Close()
}

func (l *LocalStore) PublicURL(_ context.Context, name string) (string, error) {
	if _, err := l.path(name); err != nil {
		return "", err
	}
	return l.baseURL + "/" + url.PathEscape(name), nil
}
