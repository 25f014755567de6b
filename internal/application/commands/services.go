package commands

import (
	"context"
	"fmt"
	"path"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// Services bundles the collaborators the commands run against
type Services struct {
	Documents ports.DocumentStore
	Media     ports.MediaStore
	Files     ports.FileStore
	Resizer   ports.Resizer
	Ledger    ports.UsageLedger
	Locker    *application.AssetLocker

	// Boxes are the configured output variants
	Boxes []domain.VariantBox

	// BigImageThreshold is the longest side above which a scaled master is
	// kept next to the original. 0 disables it.
	BigImageThreshold int
}

func (s *Services) locker() *application.AssetLocker {
	if s.Locker == nil {
		s.Locker = application.NewAssetLocker()
	}
	return s.Locker
}

// hasResolvableFile reports whether an asset declares a file that exists in storage
func (s *Services) hasResolvableFile(a *domain.MediaAsset) bool {
	return a.HasFile() && s.Files.Exists(a.File)
}

// assetIndex holds every media record and the subset whose file resolves
type assetIndex struct {
	all   map[int64]domain.MediaAsset
	valid map[int64]bool
}

func (s *Services) loadAssetIndex(ctx context.Context) (*assetIndex, error) {
	assets, err := s.Media.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	idx := &assetIndex{
		all:   make(map[int64]domain.MediaAsset, len(assets)),
		valid: make(map[int64]bool, len(assets)),
	}
	for i := range assets {
		a := assets[i]
		idx.all[a.ID] = a
		if s.hasResolvableFile(&a) {
			idx.valid[a.ID] = true
		}
	}
	return idx, nil
}

// resolver reports whether an id is a valid media record
func (idx *assetIndex) resolver() func(int64) bool {
	return func(id int64) bool { return idx.valid[id] }
}

// files returns the valid assets as duplicate-detection input
func (idx *assetIndex) files() []domain.AssetFile {
	out := make([]domain.AssetFile, 0, len(idx.valid))
	for id := range idx.valid {
		out = append(out, domain.AssetFile{ID: id, File: idx.all[id].File})
	}
	return out
}

func (s *Services) loadDocument(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.Documents.LoadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &application.NotFoundError{Kind: "document", ID: id}
	}
	return doc, nil
}

func (s *Services) getAsset(ctx context.Context, id int64) (*domain.MediaAsset, error) {
	asset, err := s.Media.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, &application.NotFoundError{Kind: "asset", ID: id}
	}
	return asset, nil
}

// siblingPath returns the storage path of a file stored next to source
func siblingPath(source, name string) string {
	return path.Join(path.Dir(source), name)
}
