package storefs

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-school-export/export"
)

// Store writes finished export documents below Root.
// Files appear atomically: content goes to a temp file that is renamed
// into place once complete.
type Store struct {
	Root string
}

// NewStore creates a filesystem-backed document store.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Put writes the document at key, a slash separated path relative to Root,
// and returns the file path on disk.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if s == nil {
		return "", export.NewError(export.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", export.NewError(export.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", export.NewError(export.KindValidation, "document key is required", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	target, err := s.resolvePath(key)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", export.NewError(export.KindInternal, "create export directory failed", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", export.NewError(export.KindInternal, "create temp file failed", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", export.NewError(export.KindInternal, "write export file failed", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", export.NewError(export.KindInternal, "sync export file failed", err)
	}
	if err := tmp.Close(); err != nil {
		return "", export.NewError(export.KindInternal, "close export file failed", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", export.NewError(export.KindInternal, "move export file failed", err)
	}
	return target, nil
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "invalid document key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", export.NewError(export.KindInternal, "resolve store root failed", err)
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", export.NewError(export.KindValidation, "document key escapes root", nil)
	}
	return target, nil
}
