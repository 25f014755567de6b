package commands

import (
	"context"
	"fmt"
	"path"
	"strings"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
)

// AddAssetCommand registers a stored file as a media record
type AddAssetCommand struct {
	svc    *Services
	ID     int64 // 0 assigns the next id
	File   string
	Width  int
	Height int
}

// AddAssetResult contains the created record
type AddAssetResult struct {
	Asset   domain.MediaAsset
	Message string
}

// NewAddAssetCommand creates a new asset registration command
func NewAddAssetCommand(svc *Services, id int64, file string, width, height int) *AddAssetCommand {
	return &AddAssetCommand{svc: svc, ID: id, File: file, Width: width, Height: height}
}

// Validate checks if the command can be executed
func (c *AddAssetCommand) Validate() error {
	if err := application.ValidateRequired("file", c.File); err != nil {
		return err
	}
	if c.ID < 0 {
		return application.ValidateID("assetID", c.ID)
	}
	if c.Width < 0 || c.Height < 0 {
		return &application.ValidationError{Field: "file", Message: "dimensions must not be negative"}
	}
	if !domain.HasImageExtension(c.File) {
		return &application.ValidationError{Field: "file", Message: fmt.Sprintf("%q is not an image", c.File)}
	}
	return nil
}

// Execute stores the record with any derivatives already sitting next to the
// file as its variant table
func (c *AddAssetCommand) Execute(ctx context.Context) (*AddAssetResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	file := path.Clean(strings.TrimPrefix(c.File, "/"))
	if !c.svc.Files.Exists(file) {
		return nil, &application.ValidationError{Field: "file", Message: fmt.Sprintf("%s does not exist in storage", file)}
	}

	asset := domain.MediaAsset{
		ID:       c.ID,
		File:     file,
		Width:    c.Width,
		Height:   c.Height,
		Variants: make(map[string]domain.VariantFile),
	}

	derived, err := c.svc.Files.Derived(file)
	if err != nil {
		return nil, fmt.Errorf("failed to list derived files: %w", err)
	}
	for _, d := range derived {
		name := domain.MatchBox(d.Width, d.Height, c.svc.Boxes)
		if name == "" {
			continue
		}
		if _, taken := asset.Variants[name]; taken {
			continue
		}
		asset.Variants[name] = domain.VariantFile{File: path.Base(d.Path), Width: d.Width, Height: d.Height}
	}

	id, err := c.svc.Media.CreateAsset(ctx, &asset)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	asset.ID = id

	return &AddAssetResult{
		Asset:   asset,
		Message: fmt.Sprintf("Added asset %d: %s (%d variant(s))", id, file, len(asset.Variants)),
	}, nil
}
