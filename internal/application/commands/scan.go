package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mediasweep/internal/domain"
	"mediasweep/internal/logging"
	"mediasweep/internal/metrics"
)

// ScanCorpusCommand extracts the usages of every document into the ledger and
// records the corpus-wide duplicate and orphan findings
type ScanCorpusCommand struct {
	svc     *Services
	Workers int
	Timeout time.Duration
}

// ScanCorpusResult contains the result of a corpus scan
type ScanCorpusResult struct {
	Summary    domain.ScanSummary
	Duplicates int
	Orphans    int
	Message    string
}

// NewScanCorpusCommand creates a new scan command
func NewScanCorpusCommand(svc *Services, workers int, timeout time.Duration) *ScanCorpusCommand {
	return &ScanCorpusCommand{
		svc:     svc,
		Workers: workers,
		Timeout: timeout,
	}
}

// Validate checks if the command can be executed
func (c *ScanCorpusCommand) Validate() error {
	if c.Workers < 0 {
		c.Workers = 0
	}
	return nil
}

type documentScan struct {
	id      int64
	records []domain.UsageRecord
	err     error
}

// Execute scans every document. When the context is cancelled or the timeout
// expires mid-scan the previous corpus record is left untouched and the
// returned summary is marked aborted.
func (c *ScanCorpusCommand) Execute(ctx context.Context) (*ScanCorpusResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	summary := domain.ScanSummary{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
	}
	log := logging.With().Str("run_id", summary.RunID).Logger()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	idx, err := c.svc.loadAssetIndex(ctx)
	if err != nil {
		metrics.RecordScanFailure()
		return nil, err
	}
	summary.Assets = len(idx.all)
	c.flagMissingFiles(ctx, idx)

	ids, err := c.svc.Documents.ListDocumentIDs(ctx)
	if err != nil {
		metrics.RecordScanFailure()
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	log.Info().Int("documents", len(ids)).Int("assets", summary.Assets).Msg("scan started")

	extractor := domain.NewExtractor(c.svc.Boxes)
	resolve := idx.resolver()
	results := make(chan documentScan)

	// A single writer keeps ledger writes serialized
	written := make(chan struct{})
	go func() {
		defer close(written)
		for r := range results {
			if r.err == nil {
				r.err = c.svc.Ledger.Record(ctx, r.id, r.records)
			}
			if r.err != nil {
				if !errors.Is(r.err, context.Canceled) && !errors.Is(r.err, context.DeadlineExceeded) {
					log.Warn().Err(r.err).Int64("document_id", r.id).Msg("document skipped")
				}
				summary.Failed = append(summary.Failed, r.id)
				continue
			}
			summary.Documents++
			summary.Uses += len(r.records)
			for _, rec := range r.records {
				if rec.Dangling {
					summary.Dangling++
				}
			}
			metrics.RecordDocument(len(r.records))
		}
	}()

	var g errgroup.Group
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			doc, err := c.svc.loadDocument(ctx, id)
			if err != nil {
				results <- documentScan{id: id, err: err}
				return nil
			}
			results <- documentScan{id: id, records: extractor.Extract(id, doc.Tree, resolve)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-written

	if ctx.Err() != nil {
		return c.aborted(summary, started, ctx.Err()), nil
	}

	// Documents gone from the store leave no usages or locks behind
	pruned, err := c.svc.Ledger.PruneDocuments(ctx, ids)
	if err != nil {
		if ctx.Err() != nil {
			return c.aborted(summary, started, ctx.Err()), nil
		}
		metrics.RecordScanFailure()
		return nil, fmt.Errorf("failed to prune deleted documents: %w", err)
	}
	summary.Pruned = pruned

	dangling, err := c.svc.Ledger.DanglingUsages(ctx)
	if err != nil {
		metrics.RecordScanFailure()
		return nil, fmt.Errorf("failed to load dangling usages: %w", err)
	}
	groups := domain.FindDuplicates(idx.files(), nil, dangling)

	orphans, err := findOrphans(ctx, c.svc)
	if err != nil {
		if ctx.Err() != nil {
			return c.aborted(summary, started, ctx.Err()), nil
		}
		metrics.RecordScanFailure()
		return nil, err
	}

	summary.Duration = time.Since(started)
	record := &domain.CorpusScanResult{
		Summary:    summary,
		Duplicates: groups,
		Orphans:    orphans,
	}
	if err := c.svc.Ledger.ReplaceCorpusScan(ctx, record); err != nil {
		metrics.RecordScanFailure()
		return nil, fmt.Errorf("failed to store scan result: %w", err)
	}

	metrics.RecordScan(false, summary.Duration, len(groups), len(orphans))
	log.Info().
		Int("documents", summary.Documents).
		Int("uses", summary.Uses).
		Int("dangling", summary.Dangling).
		Int("pruned", summary.Pruned).
		Int("duplicate_groups", len(groups)).
		Int("orphans", len(orphans)).
		Dur("duration", summary.Duration).
		Msg("scan finished")

	return &ScanCorpusResult{
		Summary:    summary,
		Duplicates: len(groups),
		Orphans:    len(orphans),
		Message: fmt.Sprintf("Scanned %d documents: %d uses (%d dangling), %d duplicate groups, %d orphan files",
			summary.Documents, summary.Uses, summary.Dangling, len(groups), len(orphans)),
	}, nil
}

func (c *ScanCorpusCommand) aborted(summary domain.ScanSummary, started time.Time, cause error) *ScanCorpusResult {
	summary.Aborted = true
	summary.Duration = time.Since(started)
	metrics.RecordScan(true, summary.Duration, 0, 0)
	logging.Warn().
		Str("run_id", summary.RunID).
		Err(cause).
		Int("documents", summary.Documents).
		Msg("scan aborted, previous result kept")

	return &ScanCorpusResult{
		Summary: summary,
		Message: fmt.Sprintf("Scan aborted after %d documents: %v", summary.Documents, cause),
	}
}

// flagMissingFiles keeps the file_missing flag of each asset in sync with storage
func (c *ScanCorpusCommand) flagMissingFiles(ctx context.Context, idx *assetIndex) {
	for id, a := range idx.all {
		missing := a.HasFile() && !idx.valid[id]
		if missing == a.FileMissing {
			continue
		}
		if err := setFileMissing(ctx, c.svc, id, missing); err != nil {
			logging.Warn().Err(err).Int64("asset_id", id).Msg("failed to update file_missing flag")
		}
	}
}
