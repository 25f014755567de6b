package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// Ledger implements ports.UsageLedger on the usages, variant_locks and
// corpus_scan tables
type Ledger struct {
	db *DB
}

// Ensure Ledger implements ports.UsageLedger
var _ ports.UsageLedger = (*Ledger)(nil)

// NewLedger creates a usage ledger backed by db
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// Record replaces every usage of a document in one transaction
func (l *Ledger) Record(ctx context.Context, documentID int64, records []domain.UsageRecord) error {
	tx, err := l.beginUsageTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	if err := tx.DeleteDocument(documentID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear usages of document %d: %w", documentID, err)
	}

	for i, r := range records {
		r.DocumentID = documentID
		if err := tx.InsertUsage(i, r); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record usage of asset %d in document %d: %w", r.AssetID, documentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usages of document %d: %w", documentID, err)
	}
	return nil
}

// PruneDocuments removes the usages and locks of every document not in keep,
// in one transaction, and returns the number of documents removed
func (l *Ledger) PruneDocuments(ctx context.Context, keep []int64) (int, error) {
	live := make(map[int64]bool, len(keep))
	for _, id := range keep {
		live[id] = true
	}

	tx, err := l.beginUsageTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	ids, err := tx.DocumentIDs()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to list ledger documents: %w", err)
	}

	pruned := 0
	for _, id := range ids {
		if live[id] {
			continue
		}
		if err := tx.DeleteDocument(id); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to prune usages of document %d: %w", id, err)
		}
		if err := tx.DeleteLocks(id); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to prune locks of document %d: %w", id, err)
		}
		pruned++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ledger prune: %w", err)
	}
	return pruned, nil
}

const usageColumns = `asset_id, document_id, role, variant_name, file_url, dangling`

func scanUsages(rows *sql.Rows) ([]domain.UsageRecord, error) {
	defer rows.Close()

	var records []domain.UsageRecord
	for rows.Next() {
		var r domain.UsageRecord
		var role string
		var dangling int
		if err := rows.Scan(&r.AssetID, &r.DocumentID, &role, &r.VariantName, &r.FileURL, &dangling); err != nil {
			return nil, err
		}
		r.Role = domain.Role(role)
		r.Dangling = dangling != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// UsagesFor returns every usage of an asset, grouped by document
func (l *Ledger) UsagesFor(ctx context.Context, assetID int64) (domain.LedgerEntry, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT `+usageColumns+` FROM usages WHERE asset_id = ? ORDER BY document_id, seq
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usages of asset %d: %w", assetID, err)
	}
	records, err := scanUsages(rows)
	if err != nil {
		return nil, err
	}

	entry := make(domain.LedgerEntry)
	for _, r := range records {
		entry[r.DocumentID] = append(entry[r.DocumentID], r)
	}
	return entry, nil
}

// UsagesForDocument returns the usages of an asset inside one document
func (l *Ledger) UsagesForDocument(ctx context.Context, assetID, documentID int64) ([]domain.UsageRecord, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT `+usageColumns+` FROM usages WHERE asset_id = ? AND document_id = ? ORDER BY seq
	`, assetID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usages of asset %d in document %d: %w", assetID, documentID, err)
	}
	return scanUsages(rows)
}

// DocumentUsages returns every usage recorded for a document
func (l *Ledger) DocumentUsages(ctx context.Context, documentID int64) ([]domain.UsageRecord, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT `+usageColumns+` FROM usages WHERE document_id = ? ORDER BY seq
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usages of document %d: %w", documentID, err)
	}
	return scanUsages(rows)
}

// DanglingUsages returns every usage whose asset id did not resolve
func (l *Ledger) DanglingUsages(ctx context.Context) ([]domain.UsageRecord, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT `+usageColumns+` FROM usages WHERE dangling = 1 ORDER BY document_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dangling usages: %w", err)
	}
	return scanUsages(rows)
}

// AllBaseKeysUsed returns the base key of every referenced file url
func (l *Ledger) AllBaseKeysUsed(ctx context.Context) (map[string]bool, error) {
	rows, err := l.db.db.QueryContext(ctx, `SELECT DISTINCT base_key FROM usages WHERE base_key != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query base keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Locks returns the variant locks held on an asset
func (l *Ledger) Locks(ctx context.Context, assetID int64) ([]domain.LockEntry, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT asset_id, document_id, variant_name FROM variant_locks
		WHERE asset_id = ? ORDER BY document_id, variant_name
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locks of asset %d: %w", assetID, err)
	}
	defer rows.Close()

	var locks []domain.LockEntry
	for rows.Next() {
		var e domain.LockEntry
		if err := rows.Scan(&e.AssetID, &e.DocumentID, &e.VariantName); err != nil {
			return nil, err
		}
		locks = append(locks, e)
	}
	return locks, rows.Err()
}

// Lock pins a variant. Locking twice is a no-op.
func (l *Ledger) Lock(ctx context.Context, e domain.LockEntry) error {
	_, err := l.db.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO variant_locks (asset_id, document_id, variant_name) VALUES (?, ?, ?)
	`, e.AssetID, e.DocumentID, e.VariantName)
	if err != nil {
		return fmt.Errorf("failed to lock %s of asset %d: %w", e.VariantName, e.AssetID, err)
	}
	return nil
}

// Unlock removes a variant lock. Unlocking a missing lock is a no-op.
func (l *Ledger) Unlock(ctx context.Context, e domain.LockEntry) error {
	_, err := l.db.db.ExecContext(ctx, `
		DELETE FROM variant_locks WHERE asset_id = ? AND document_id = ? AND variant_name = ?
	`, e.AssetID, e.DocumentID, e.VariantName)
	if err != nil {
		return fmt.Errorf("failed to unlock %s of asset %d: %w", e.VariantName, e.AssetID, err)
	}
	return nil
}

// ReplaceCorpusScan overwrites the corpus-wide record
func (l *Ledger) ReplaceCorpusScan(ctx context.Context, result *domain.CorpusScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode corpus scan: %w", err)
	}
	_, err = l.db.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO corpus_scan (id, data, updated_at) VALUES (1, ?, ?)
	`, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store corpus scan: %w", err)
	}
	return nil
}

// LastCorpusScan returns the corpus-wide record, or nil when no scan completed yet
func (l *Ledger) LastCorpusScan(ctx context.Context) (*domain.CorpusScanResult, error) {
	var data []byte
	err := l.db.db.QueryRowContext(ctx, `SELECT data FROM corpus_scan WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus scan: %w", err)
	}

	var result domain.CorpusScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode corpus scan: %w", err)
	}
	return &result, nil
}
