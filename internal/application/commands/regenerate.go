package commands

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/goccy/go-json"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/logging"
	"mediasweep/internal/metrics"
	"mediasweep/internal/ports"
)

func setFileMissing(ctx context.Context, svc *Services, assetID int64, missing bool) error {
	var value []byte
	if missing {
		value = []byte("1")
	}
	return svc.Media.SetMeta(ctx, assetID, ports.MetaFileMissing, value)
}

// regeneration is the outcome of regenerating the variants of one asset
type regeneration struct {
	State      domain.RegenState
	Protected  []string
	Generated  []string
	Deleted    []string
	Variants   map[string]domain.VariantFile
	Failures   *application.PartialFailure
	Mismatches []string
}

// regenerate brings the variant files of an asset in line with the protected
// set: stale derivatives are removed, missing protected variants are
// generated, the variant table is persisted once and then verified against
// storage. A missing source file aborts before anything is touched.
func regenerate(ctx context.Context, svc *Services, asset *domain.MediaAsset, requested []string) (*regeneration, error) {
	r := &regeneration{
		State:    domain.RegenRequested,
		Failures: &application.PartialFailure{Op: fmt.Sprintf("regenerate asset %d", asset.ID)},
	}
	log := logging.With().Int64("asset_id", asset.ID).Logger()

	entry, err := svc.Ledger.UsagesFor(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usages: %w", err)
	}
	locks, err := svc.Ledger.Locks(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load locks: %w", err)
	}
	usages := entry.All()
	protected := domain.ComputeProtectedSet(requested, usages, locks)
	r.Protected = domain.SortedNames(protected)
	r.State = domain.RegenProtectedSetComputed

	if !svc.hasResolvableFile(asset) {
		if asset.HasFile() && !asset.FileMissing {
			if err := setFileMissing(ctx, svc, asset.ID, true); err != nil {
				log.Warn().Err(err).Msg("failed to flag missing file")
			}
		}
		return nil, &application.CriticalFailure{
			AssetID: asset.ID,
			Stage:   "source",
			Err:     fmt.Errorf("source file %q is missing", asset.File),
		}
	}

	variants := make(map[string]domain.VariantFile, len(asset.Variants))
	for name, v := range asset.Variants {
		variants[name] = v
	}

	// Stale derivatives
	derived, err := svc.Files.Derived(asset.File)
	if err != nil {
		return nil, fmt.Errorf("failed to list derived files: %w", err)
	}
	referenced := domain.ReferencedFileNames(usages)
	for _, f := range derived {
		names := domain.VariantNamesOf(f, asset.Variants, svc.Boxes)
		if !domain.IsStale(f, names, protected, referenced) {
			continue
		}
		if err := svc.Files.Remove(f.Path); err != nil {
			r.Failures.Add(f.Path, err.Error())
			continue
		}
		r.Deleted = append(r.Deleted, f.Path)
		base := path.Base(f.Path)
		for name, v := range variants {
			if v.File == base {
				delete(variants, name)
			}
		}
	}
	r.State = domain.RegenStaleFilesRemoved

	// Generation
	source := asset.File
	if master, ok, err := svc.scaledMaster(ctx, asset, variants); err != nil {
		r.Failures.Add(domain.ScaledMasterName, err.Error())
	} else if ok {
		source = master
	}

	var expected []string
	for _, name := range r.Protected {
		box, ok := domain.FindBox(name, svc.Boxes)
		if !ok {
			r.Failures.Add(name, "no configured size")
			continue
		}
		expected = append(expected, name)

		if v, ok := variants[name]; ok && svc.Files.Exists(siblingPath(asset.File, v.File)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vf, err := svc.Resizer.Resize(ctx, source, box)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Warn().Err(err).Str("variant", name).Msg("variant generation failed")
			r.Failures.Add(name, err.Error())
			continue
		}
		variants[name] = vf
		r.Generated = append(r.Generated, name)
	}
	r.State = domain.RegenVariantsGenerated

	data, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variant table: %w", err)
	}
	if err := svc.Media.SetMeta(ctx, asset.ID, ports.MetaVariants, data); err != nil {
		return nil, fmt.Errorf("failed to persist variant table: %w", err)
	}
	r.Variants = variants
	r.State = domain.RegenMetadataPersisted

	stored, err := svc.getAsset(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify asset: %w", err)
	}
	for _, name := range expected {
		v, ok := stored.Variants[name]
		if !ok || !svc.Files.Exists(siblingPath(asset.File, v.File)) {
			r.Mismatches = append(r.Mismatches, name)
		}
	}
	r.State = domain.RegenVerified

	metrics.RecordRegeneration(len(r.Generated), len(r.Failures.Items), len(r.Deleted))
	log.Info().
		Strs("protected", r.Protected).
		Strs("generated", r.Generated).
		Int("deleted", len(r.Deleted)).
		Int("failed", len(r.Failures.Items)).
		Msg("variants regenerated")

	return r, nil
}

// scaledMaster ensures the bounded master copy of an oversized source exists
// and returns its path
func (s *Services) scaledMaster(ctx context.Context, asset *domain.MediaAsset, variants map[string]domain.VariantFile) (string, bool, error) {
	limit := s.BigImageThreshold
	if limit <= 0 || (asset.Width <= limit && asset.Height <= limit) {
		return "", false, nil
	}

	file := siblingPath(asset.File, domain.ScaledMasterFileName(asset.File))
	if s.Files.Exists(file) {
		return file, true, nil
	}

	vf, err := s.Resizer.Resize(ctx, asset.File, domain.VariantBox{Name: domain.ScaledMasterName, Width: limit})
	if err != nil {
		return "", false, err
	}
	variants[domain.ScaledMasterName] = vf
	return siblingPath(asset.File, vf.File), true, nil
}
