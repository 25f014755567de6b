package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// ErrOutsideRoot is returned for paths that escape the storage root
var ErrOutsideRoot = errors.New("path outside storage root")

// Storage implements ports.FileStore on a local directory tree
type Storage struct {
	root      string
	publicURL string
	exclude   []string
}

// Ensure Storage implements ports.FileStore
var _ ports.FileStore = (*Storage)(nil)

// NewStorage creates a storage rooted at root. exclude holds doublestar
// patterns matched against slash-separated paths relative to root.
func NewStorage(root, publicURL string, exclude []string) *Storage {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &Storage{
		root:      filepath.Clean(root),
		publicURL: strings.TrimRight(publicURL, "/"),
		exclude:   exclude,
	}
}

// Root returns the absolute storage directory
func (s *Storage) Root() string {
	return s.root
}

// Abs resolves a relative storage path to a filesystem path
func (s *Storage) Abs(file string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(file))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, file)
	}
	abs := filepath.Join(s.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, file)
	}
	return abs, nil
}

// Exists reports whether a regular file exists at the storage path
func (s *Storage) Exists(file string) bool {
	abs, err := s.Abs(file)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes one file. A missing file is not an error.
func (s *Storage) Remove(file string) error {
	abs, err := s.Abs(file)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", file, err)
	}
	return nil
}

// Size returns the size of a file in bytes
func (s *Storage) Size(file string) (int64, error) {
	abs, err := s.Abs(file)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", file, err)
	}
	return info.Size(), nil
}

// Derived lists the WxH derivatives next to a source file, sorted by name.
// Dimensions come from the file name suffix.
func (s *Storage) Derived(file string) ([]domain.DerivedFile, error) {
	abs, err := s.Abs(file)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Dir(abs))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory of %s: %w", file, err)
	}

	dir := path.Dir(filepath.ToSlash(file))
	var derived []domain.DerivedFile
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsDerivedOf(entry.Name(), file) {
			continue
		}
		w, h, _ := domain.ParseDimensions(entry.Name())
		derived = append(derived, domain.DerivedFile{
			Path:   path.Join(dir, entry.Name()),
			Width:  w,
			Height: h,
		})
	}

	sort.Slice(derived, func(i, j int) bool { return derived[i].Path < derived[j].Path })
	return derived, nil
}

// WalkImages visits every image file under the root that is not hidden and
// not excluded, in lexical order
func (s *Storage) WalkImages(ctx context.Context, fn func(path string, size int64) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == s.root {
				return err
			}
			return nil // Skip unreadable entries
		}
		if p == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		// Skip hidden and system entries
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.excluded(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !domain.HasImageExtension(d.Name()) || s.excluded(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(rel, info.Size())
	})
}

func (s *Storage) excluded(rel string) bool {
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(pattern, strings.TrimSuffix(rel, "/")); ok {
				return true
			}
		}
	}
	return false
}

// URL returns the public url of a stored file
func (s *Storage) URL(file string) string {
	return s.publicURL + "/" + strings.TrimPrefix(filepath.ToSlash(file), "/")
}
