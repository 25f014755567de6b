package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mediasweep/internal/domain"
)

// ImportStats summarizes a document import
type ImportStats struct {
	FilesScanned int
	Imported     int
	Skipped      []string // Files whose name is not a document id or whose content is not JSON
}

// Import loads document trees from a JSON file or a directory of JSON files.
// The file stem is the document id ("42.json" -> document 42); the title is
// taken from a top-level "title" key when the tree has one.
func (s *DocumentStore) Import(ctx context.Context, root string) (*ImportStats, error) {
	stats := &ImportStats{}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return stats, s.importFile(ctx, root, stats)
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip hidden directories
		if info.IsDir() && path != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), ".json") {
			return nil
		}

		return s.importFile(ctx, path, stats)
	})
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *DocumentStore) importFile(ctx context.Context, path string, stats *ImportStats) error {
	stats.FilesScanned++

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id, err := strconv.ParseInt(stem, 10, 64)
	if err != nil || id <= 0 {
		stats.Skipped = append(stats.Skipped, path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	tree, err := domain.DecodeTree(data)
	if err != nil {
		stats.Skipped = append(stats.Skipped, path)
		return nil
	}

	doc := &domain.Document{ID: id, Tree: tree}
	if m, ok := tree.(map[string]any); ok {
		if title, ok := m["title"].(string); ok {
			doc.Title = title
		}
	}

	if err := s.SaveDocument(ctx, doc); err != nil {
		return err
	}
	stats.Imported++
	return nil
}
