package domain

import (
	"sort"
	"time"
)

// UsageRecord is one occurrence of an asset inside one document's tree
type UsageRecord struct {
	AssetID     int64  `json:"asset_id"`
	DocumentID  int64  `json:"document_id"`
	Role        Role   `json:"role"`
	VariantName string `json:"variant_name"`
	FileURL     string `json:"file_url"`
	Dangling    bool   `json:"dangling"` // AssetID does not resolve to a valid media record
}

// LedgerEntry holds one asset's usages, keyed by document id
type LedgerEntry map[int64][]UsageRecord

// DocumentIDs returns the documents of the entry in ascending order
func (e LedgerEntry) DocumentIDs() []int64 {
	ids := make([]int64, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// All flattens the entry, ordered by document id
func (e LedgerEntry) All() []UsageRecord {
	var out []UsageRecord
	for _, id := range e.DocumentIDs() {
		out = append(out, e[id]...)
	}
	return out
}

// LockEntry pins a variant of an asset on behalf of a document
type LockEntry struct {
	AssetID     int64  `json:"asset_id"`
	DocumentID  int64  `json:"document_id"`
	VariantName string `json:"variant_name"`
}

// Document is a content document and its widget tree (decoded JSON)
type Document struct {
	ID    int64
	Title string
	Tree  any
}

// OrphanCandidate is an on-disk file whose base key no document references
type OrphanCandidate struct {
	Path      string `json:"path"`
	BaseKey   string `json:"base_key"`
	SizeBytes int64  `json:"size_bytes"`
}

// ScanSummary describes one corpus scan
type ScanSummary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Documents int           `json:"documents"`
	Assets    int           `json:"assets"`
	Uses      int           `json:"uses"`
	Dangling  int           `json:"dangling"`
	Pruned    int           `json:"pruned,omitempty"` // Deleted documents whose usages were dropped
	Failed    []int64       `json:"failed,omitempty"` // Documents that could not be loaded or recorded
	Aborted   bool          `json:"aborted"`
}

// CorpusScanResult is the corpus-wide derived state, replaced wholesale on each scan
type CorpusScanResult struct {
	Summary    ScanSummary       `json:"summary"`
	Duplicates []DuplicateGroup  `json:"duplicates"`
	Orphans    []OrphanCandidate `json:"orphans"`
}
