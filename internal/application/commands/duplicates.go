package commands

import (
	"context"
	"fmt"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
)

// FindDuplicatesCommand groups assets sharing a base key across the corpus
type FindDuplicatesCommand struct {
	svc *Services
}

// FindDuplicatesResult contains the duplicate groups found
type FindDuplicatesResult struct {
	DocumentID int64 // 0 for a corpus-wide search
	Groups     []domain.DuplicateGroup
	Message    string
}

// NewFindDuplicatesCommand creates a new corpus-wide duplicate search
func NewFindDuplicatesCommand(svc *Services) *FindDuplicatesCommand {
	return &FindDuplicatesCommand{svc: svc}
}

// Execute groups every asset with a resolvable file, plus the dangling
// references recorded in the ledger
func (c *FindDuplicatesCommand) Execute(ctx context.Context) (*FindDuplicatesResult, error) {
	idx, err := c.svc.loadAssetIndex(ctx)
	if err != nil {
		return nil, err
	}
	dangling, err := c.svc.Ledger.DanglingUsages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dangling usages: %w", err)
	}

	groups := domain.FindDuplicates(idx.files(), nil, dangling)
	return &FindDuplicatesResult{
		Groups:  groups,
		Message: fmt.Sprintf("Found %d duplicate group(s)", len(groups)),
	}, nil
}

// FindDuplicatesForDocumentCommand groups duplicates from the point of view
// of one document: assets it already uses win the primary slot, and only its
// own dangling references are included
type FindDuplicatesForDocumentCommand struct {
	svc        *Services
	DocumentID int64
}

// NewFindDuplicatesForDocumentCommand creates a new document duplicate search
func NewFindDuplicatesForDocumentCommand(svc *Services, documentID int64) *FindDuplicatesForDocumentCommand {
	return &FindDuplicatesForDocumentCommand{svc: svc, DocumentID: documentID}
}

// Validate checks if the command can be executed
func (c *FindDuplicatesForDocumentCommand) Validate() error {
	return application.ValidateID("documentID", c.DocumentID)
}

// Execute extracts the document's current tree and groups duplicates
func (c *FindDuplicatesForDocumentCommand) Execute(ctx context.Context) (*FindDuplicatesResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	doc, err := c.svc.loadDocument(ctx, c.DocumentID)
	if err != nil {
		return nil, err
	}
	idx, err := c.svc.loadAssetIndex(ctx)
	if err != nil {
		return nil, err
	}

	records := domain.NewExtractor(c.svc.Boxes).Extract(doc.ID, doc.Tree, idx.resolver())
	onPage := make(map[int64]bool)
	var dangling []domain.UsageRecord
	for _, r := range records {
		if r.Dangling {
			dangling = append(dangling, r)
			continue
		}
		onPage[r.AssetID] = true
	}

	groups := domain.FindDuplicates(idx.files(), onPage, dangling)
	return &FindDuplicatesResult{
		DocumentID: c.DocumentID,
		Groups:     groups,
		Message:    fmt.Sprintf("Found %d duplicate group(s) for document %d", len(groups), c.DocumentID),
	}, nil
}
