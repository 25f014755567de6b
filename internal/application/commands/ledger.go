package commands

import (
	"context"
	"fmt"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
)

// GetUsageLedgerEntryCommand returns where one asset is used
type GetUsageLedgerEntryCommand struct {
	svc     *Services
	AssetID int64
}

// UsageLedgerEntryResult contains the usages of one asset
type UsageLedgerEntryResult struct {
	AssetID int64
	Entry   domain.LedgerEntry
	Locks   []domain.LockEntry
	Message string
}

// NewGetUsageLedgerEntryCommand creates a new ledger lookup command
func NewGetUsageLedgerEntryCommand(svc *Services, assetID int64) *GetUsageLedgerEntryCommand {
	return &GetUsageLedgerEntryCommand{svc: svc, AssetID: assetID}
}

// Validate checks if the command can be executed
func (c *GetUsageLedgerEntryCommand) Validate() error {
	return application.ValidateID("assetID", c.AssetID)
}

// Execute looks up the ledger entry. Dangling ids have entries without a
// media record; an id with neither is not found.
func (c *GetUsageLedgerEntryCommand) Execute(ctx context.Context) (*UsageLedgerEntryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entry, err := c.svc.Ledger.UsagesFor(ctx, c.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usages: %w", err)
	}
	if len(entry) == 0 {
		if _, err := c.svc.getAsset(ctx, c.AssetID); err != nil {
			return nil, err
		}
	}

	locks, err := c.svc.Ledger.Locks(ctx, c.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load locks: %w", err)
	}

	return &UsageLedgerEntryResult{
		AssetID: c.AssetID,
		Entry:   entry,
		Locks:   locks,
		Message: fmt.Sprintf("Asset %d is used %d time(s) in %d document(s)", c.AssetID, len(entry.All()), len(entry)),
	}, nil
}

// LastScanCommand returns the most recent completed corpus scan
type LastScanCommand struct {
	svc *Services
}

// NewLastScanCommand creates a new last-scan command
func NewLastScanCommand(svc *Services) *LastScanCommand {
	return &LastScanCommand{svc: svc}
}

// Execute loads the stored corpus record
func (c *LastScanCommand) Execute(ctx context.Context) (*domain.CorpusScanResult, error) {
	result, err := c.svc.Ledger.LastCorpusScan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load last scan: %w", err)
	}
	if result == nil {
		return nil, &application.NotFoundError{Kind: "scan"}
	}
	return result, nil
}
