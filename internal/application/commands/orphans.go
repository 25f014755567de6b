package commands

import (
	"context"
	"fmt"
	"path"

	"mediasweep/internal/domain"
)

// FindOrphansCommand lists image files in storage no document uses
type FindOrphansCommand struct {
	svc *Services
}

// FindOrphansResult contains the orphan candidates
type FindOrphansResult struct {
	Orphans    []domain.OrphanCandidate
	TotalBytes int64
	Message    string
}

// NewFindOrphansCommand creates a new orphan search
func NewFindOrphansCommand(svc *Services) *FindOrphansCommand {
	return &FindOrphansCommand{svc: svc}
}

// Execute walks storage and compares each file's base key with the keys used
// anywhere in the ledger
func (c *FindOrphansCommand) Execute(ctx context.Context) (*FindOrphansResult, error) {
	orphans, err := findOrphans(ctx, c.svc)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, o := range orphans {
		total += o.SizeBytes
	}
	return &FindOrphansResult{
		Orphans:    orphans,
		TotalBytes: total,
		Message:    fmt.Sprintf("Found %d orphan file(s), %d bytes", len(orphans), total),
	}, nil
}

func findOrphans(ctx context.Context, svc *Services) ([]domain.OrphanCandidate, error) {
	used, err := svc.Ledger.AllBaseKeysUsed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load used base keys: %w", err)
	}

	orphans := []domain.OrphanCandidate{}
	err = svc.Files.WalkImages(ctx, func(p string, size int64) error {
		key := domain.BaseKey(path.Base(p))
		if key == "" || used[key] {
			return nil
		}
		orphans = append(orphans, domain.OrphanCandidate{Path: p, BaseKey: key, SizeBytes: size})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk storage: %w", err)
	}
	return orphans, nil
}
