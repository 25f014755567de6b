package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/goccy/go-json"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/logging"
	"mediasweep/internal/ports"
)

const (
	MetaVariants    = ports.MetaVariants
	MetaFileMissing = ports.MetaFileMissing
)

// MediaStore implements ports.MediaStore on the assets and asset_meta tables
type MediaStore struct {
	db    *DB
	files ports.FileStore
}

// Ensure MediaStore implements ports.MediaStore
var _ ports.MediaStore = (*MediaStore)(nil)

// NewMediaStore creates a media store. files is used to purge backing files
// on delete and may be nil when purging is never requested.
func NewMediaStore(db *DB, files ports.FileStore) *MediaStore {
	return &MediaStore{db: db, files: files}
}

// ListAssets returns every media record with its variant table, ordered by id
func (s *MediaStore) ListAssets(ctx context.Context) ([]domain.MediaAsset, error) {
	rows, err := s.db.db.QueryContext(ctx, `SELECT id, file, width, height FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.MediaAsset
	index := make(map[int64]int)
	for rows.Next() {
		var a domain.MediaAsset
		if err := rows.Scan(&a.ID, &a.File, &a.Width, &a.Height); err != nil {
			return nil, err
		}
		index[a.ID] = len(assets)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metaRows, err := s.db.db.QueryContext(ctx, `
		SELECT asset_id, key, value FROM asset_meta WHERE key IN (?, ?)
	`, MetaVariants, MetaFileMissing)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset metadata: %w", err)
	}
	defer metaRows.Close()

	for metaRows.Next() {
		var id int64
		var key string
		var value []byte
		if err := metaRows.Scan(&id, &key, &value); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if err := applyMeta(&assets[i], key, value); err != nil {
			return nil, err
		}
	}
	return assets, metaRows.Err()
}

// GetAsset returns one media record with its variant table
func (s *MediaStore) GetAsset(ctx context.Context, id int64) (*domain.MediaAsset, error) {
	a := domain.MediaAsset{ID: id}
	err := s.db.db.QueryRowContext(ctx, `SELECT file, width, height FROM assets WHERE id = ?`, id).
		Scan(&a.File, &a.Width, &a.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &application.NotFoundError{Kind: "asset", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %d: %w", id, err)
	}

	for _, key := range []string{MetaVariants, MetaFileMissing} {
		value, err := s.GetMeta(ctx, id, key)
		if err != nil {
			return nil, err
		}
		if err := applyMeta(&a, key, value); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func applyMeta(a *domain.MediaAsset, key string, value []byte) error {
	switch key {
	case MetaVariants:
		if len(value) == 0 {
			return nil
		}
		variants := make(map[string]domain.VariantFile)
		if err := json.Unmarshal(value, &variants); err != nil {
			return fmt.Errorf("asset %d: invalid variant table: %w", a.ID, err)
		}
		a.Variants = variants
	case MetaFileMissing:
		a.FileMissing = string(value) == "1"
	}
	return nil
}

// CreateAsset inserts a media record and its variant table. A zero ID is
// assigned by the database.
func (s *MediaStore) CreateAsset(ctx context.Context, asset *domain.MediaAsset) (int64, error) {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var res sql.Result
	if asset.ID > 0 {
		res, err = tx.ExecContext(ctx, `INSERT INTO assets (id, file, width, height, created_at) VALUES (?, ?, ?, ?, ?)`,
			asset.ID, asset.File, asset.Width, asset.Height, time.Now().Unix())
	} else {
		res, err = tx.ExecContext(ctx, `INSERT INTO assets (file, width, height, created_at) VALUES (?, ?, ?, ?)`,
			asset.File, asset.Width, asset.Height, time.Now().Unix())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create asset: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(asset.Variants) > 0 {
		data, err := json.Marshal(asset.Variants)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO asset_meta (asset_id, key, value) VALUES (?, ?, ?)`, id, MetaVariants, data); err != nil {
			return 0, fmt.Errorf("failed to store variant table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteAsset removes the record and its metadata, and with purgeFile the
// source file, the scaled master and every derived file that no other asset
// or recorded usage still claims
func (s *MediaStore) DeleteAsset(ctx context.Context, id int64, purgeFile bool) error {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return err
	}

	if purgeFile && s.files != nil && asset.HasFile() {
		if err := s.purge(ctx, asset); err != nil {
			return err
		}
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_meta WHERE asset_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete metadata of asset %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM variant_locks WHERE asset_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete locks of asset %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete asset %d: %w", id, err)
	}
	return tx.Commit()
}

// purge removes the files of an asset. Files another asset owns, and files
// a recorded usage points at, are kept.
func (s *MediaStore) purge(ctx context.Context, asset *domain.MediaAsset) error {
	dir := path.Dir(asset.File)

	claims, err := s.fileClaims(ctx, asset.ID)
	if err != nil {
		return err
	}

	derived, err := s.files.Derived(asset.File)
	if err != nil {
		return fmt.Errorf("failed to list derived files of asset %d: %w", asset.ID, err)
	}

	targets := []string{asset.File, path.Join(dir, domain.ScaledMasterFileName(asset.File))}
	for _, d := range derived {
		targets = append(targets, d.Path)
	}
	for _, v := range asset.Variants {
		targets = append(targets, path.Join(dir, v.File))
	}

	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			continue
		}
		seen[t] = true
		if claims.claimed(t) {
			logging.Debug().Int64("asset_id", asset.ID).Str("file", t).Msg("file kept, still claimed")
			continue
		}
		if !s.files.Exists(t) {
			continue
		}
		if err := s.files.Remove(t); err != nil {
			return fmt.Errorf("failed to remove %s: %w", t, err)
		}
	}
	return nil
}

// fileClaims are the storage files that must survive deleting one asset
type fileClaims struct {
	paths   map[string]bool // files, scaled masters and variants of the other assets
	names   map[string]bool // file names recorded usages point at
	sources []string        // files of the other assets
}

func (s *MediaStore) fileClaims(ctx context.Context, except int64) (*fileClaims, error) {
	assets, err := s.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	c := &fileClaims{paths: make(map[string]bool), names: make(map[string]bool)}
	for _, a := range assets {
		if a.ID == except || !a.HasFile() {
			continue
		}
		dir := path.Dir(a.File)
		c.paths[a.File] = true
		c.paths[path.Join(dir, domain.ScaledMasterFileName(a.File))] = true
		c.sources = append(c.sources, a.File)
		for _, v := range a.Variants {
			c.paths[path.Join(dir, v.File)] = true
		}
	}

	rows, err := s.db.db.QueryContext(ctx, `SELECT DISTINCT file_url FROM usages WHERE file_url != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to list used files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		c.names[domain.URLFileName(url)] = true
	}
	return c, rows.Err()
}

// claimed reports whether file belongs to another asset, is a derivative of
// another asset's file, or is named by a recorded usage
func (c *fileClaims) claimed(file string) bool {
	if c.paths[file] || c.names[path.Base(file)] {
		return true
	}
	for _, src := range c.sources {
		if path.Dir(src) == path.Dir(file) && domain.IsDerivedOf(path.Base(file), src) {
			return true
		}
	}
	return false
}

// GetMeta returns the raw value of a metadata key, or nil when unset
func (s *MediaStore) GetMeta(ctx context.Context, id int64, key string) ([]byte, error) {
	var value []byte
	err := s.db.db.QueryRowContext(ctx, `SELECT value FROM asset_meta WHERE asset_id = ? AND key = ?`, id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of asset %d: %w", key, id, err)
	}
	return value, nil
}

// SetMeta writes one metadata key in a single statement. A nil value deletes the key.
func (s *MediaStore) SetMeta(ctx context.Context, id int64, key string, value []byte) error {
	var err error
	if value == nil {
		_, err = s.db.db.ExecContext(ctx, `DELETE FROM asset_meta WHERE asset_id = ? AND key = ?`, id, key)
	} else {
		_, err = s.db.db.ExecContext(ctx, `
			INSERT INTO asset_meta (asset_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT(asset_id, key) DO UPDATE SET value = excluded.value
		`, id, key, value)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s of asset %d: %w", key, id, err)
	}
	return nil
}
