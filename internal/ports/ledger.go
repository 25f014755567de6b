package ports

import (
	"context"

	"mediasweep/internal/domain"
)

// UsageLedger is the cross-document index of asset usages.
// Only the most recent scan of a document is ever visible.
type UsageLedger interface {
	// Record atomically replaces every usage of a document
	Record(ctx context.Context, documentID int64, records []domain.UsageRecord) error

	// PruneDocuments drops the usages and locks of every document not in keep
	// and returns how many documents were dropped
	PruneDocuments(ctx context.Context, keep []int64) (int, error)

	// Usage queries
	UsagesFor(ctx context.Context, assetID int64) (domain.LedgerEntry, error)
	UsagesForDocument(ctx context.Context, assetID, documentID int64) ([]domain.UsageRecord, error)
	DocumentUsages(ctx context.Context, documentID int64) ([]domain.UsageRecord, error)
	DanglingUsages(ctx context.Context) ([]domain.UsageRecord, error)
	AllBaseKeysUsed(ctx context.Context) (map[string]bool, error)

	// Variant locks
	Locks(ctx context.Context, assetID int64) ([]domain.LockEntry, error)
	Lock(ctx context.Context, entry domain.LockEntry) error
	Unlock(ctx context.Context, entry domain.LockEntry) error

	// Corpus-wide record, replaced wholesale
	ReplaceCorpusScan(ctx context.Context, result *domain.CorpusScanResult) error
	LastCorpusScan(ctx context.Context) (*domain.CorpusScanResult, error)
}
