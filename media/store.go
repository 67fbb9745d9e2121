// Package media persists uploaded post attachments to a local directory
// served as static files by the router.
package media

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store writes attachments into dir and hands back web paths under
// publicPath (e.g. /uploads/1700000000000-photo.jpg).
type Store struct {
	dir        string
	publicPath string
}

func NewStore(dir, publicPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, publicPath: publicPath}, nil
}

// Dir returns the directory backing the store, for the static file mount.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the attachment and returns its web path. The stored name is
// the upload instant in unix millis joined to the original base name, which
// avoids collisions short of two same-named uploads in the same millisecond.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}

	return path.Join(s.publicPath, name), nil
}

// Remove deletes the attachment behind a web path previously returned by
// Save. Paths outside the store's public prefix and already-missing files
// are not errors.
func (s *Store) Remove(webPath string) error {
	rel, ok := strings.CutPrefix(webPath, s.publicPath+"/")
	if !ok || rel == "" || strings.Contains(rel, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, rel)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
