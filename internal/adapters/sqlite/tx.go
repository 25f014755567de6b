package sqlite

import (
	"context"
	"database/sql"

	"mediasweep/internal/domain"
)

// usageTx groups the statements that replace one document's usages
type usageTx struct {
	ctx  context.Context
	tx   *sql.Tx
	stmt *sql.Stmt
}

func (l *Ledger) beginUsageTx(ctx context.Context) (*usageTx, error) {
	tx, err := l.db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usages (document_id, seq, asset_id, role, variant_name, file_url, base_key, dangling)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &usageTx{ctx: ctx, tx: tx, stmt: stmt}, nil
}

// DeleteDocument removes every usage of a document
func (t *usageTx) DeleteDocument(documentID int64) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM usages WHERE document_id = ?`, documentID)
	return err
}

// DocumentIDs returns every document holding usages or locks
func (t *usageTx) DocumentIDs() ([]int64, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT document_id FROM usages
		UNION
		SELECT document_id FROM variant_locks
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteLocks removes every variant lock held for a document
func (t *usageTx) DeleteLocks(documentID int64) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM variant_locks WHERE document_id = ?`, documentID)
	return err
}

// InsertUsage adds one usage row
func (t *usageTx) InsertUsage(seq int, r domain.UsageRecord) error {
	_, err := t.stmt.ExecContext(t.ctx,
		r.DocumentID, seq, r.AssetID, string(r.Role), r.VariantName, r.FileURL,
		domain.BaseKey(r.FileURL), boolToInt(r.Dangling))
	return err
}

// Commit commits the transaction
func (t *usageTx) Commit() error {
	t.stmt.Close()
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *usageTx) Rollback() error {
	t.stmt.Close()
	return t.tx.Rollback()
}
