package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// DB is the SQLite database shared by the document store, the media store
// and the usage ledger
type DB struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the database location under the XDG data directory
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mediasweep", "mediasweep.db")
}

// Open opens (or creates) the database at path and applies the schema
func Open(path string) (*DB, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			tree BLOB,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS asset_meta (
			asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value BLOB,
			PRIMARY KEY (asset_id, key)
		);
		CREATE TABLE IF NOT EXISTS usages (
			document_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			asset_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			variant_name TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			base_key TEXT NOT NULL DEFAULT '',
			dangling INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (document_id, seq)
		);
		CREATE TABLE IF NOT EXISTS variant_locks (
			asset_id INTEGER NOT NULL,
			document_id INTEGER NOT NULL,
			variant_name TEXT NOT NULL,
			PRIMARY KEY (asset_id, document_id, variant_name)
		);
		CREATE TABLE IF NOT EXISTS corpus_scan (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_usages_asset ON usages(asset_id);
		CREATE INDEX IF NOT EXISTS idx_usages_dangling ON usages(dangling);
		CREATE INDEX IF NOT EXISTS idx_usages_base_key ON usages(base_key);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Path returns the database file location
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
