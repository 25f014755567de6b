package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/logging"
)

// LinkAndRegenerateCommand merges duplicate references in one document into
// the primary asset and regenerates the primary's variants
type LinkAndRegenerateCommand struct {
	svc          *Services
	PrimaryID    int64
	DuplicateIDs []int64
	RoleVariants map[domain.Role]string
	DocumentID   int64
}

// LinkAndRegenerateResult contains the result of a link operation
type LinkAndRegenerateResult struct {
	MergedCount       int
	GeneratedVariants []string
	DeletedGhostFiles []string // Stale derivative files removed from storage
	Ghosts            []int64  // Merged assets no longer referenced by the document
	Failures          []application.FailedItem
	Verification      []string // Variants missing after the table was persisted
	State             domain.RegenState
	Message           string
}

// NewLinkAndRegenerateCommand creates a new link command
func NewLinkAndRegenerateCommand(svc *Services, primaryID int64, duplicateIDs []int64, roleVariants map[domain.Role]string, documentID int64) *LinkAndRegenerateCommand {
	return &LinkAndRegenerateCommand{
		svc:          svc,
		PrimaryID:    primaryID,
		DuplicateIDs: duplicateIDs,
		RoleVariants: roleVariants,
		DocumentID:   documentID,
	}
}

// Validate checks if the command can be executed
func (c *LinkAndRegenerateCommand) Validate() error {
	if err := application.ValidateID("primaryID", c.PrimaryID); err != nil {
		return err
	}
	if err := application.ValidateID("documentID", c.DocumentID); err != nil {
		return err
	}
	for _, id := range c.DuplicateIDs {
		if err := application.ValidateID("duplicateID", id); err != nil {
			return err
		}
		if id == c.PrimaryID {
			return &application.ValidationError{
				Field:   "duplicateID",
				Message: fmt.Sprintf("primary asset %d cannot be its own duplicate", id),
			}
		}
	}
	if len(c.RoleVariants) == 0 {
		return &application.ValidationError{
			Field:   "variants",
			Message: "at least one role must map to a variant",
		}
	}
	for role, name := range c.RoleVariants {
		if strings.TrimSpace(string(role)) == "" {
			return &application.ValidationError{Field: "variants", Message: "role is required"}
		}
		if _, ok := domain.FindBox(name, c.svc.Boxes); !ok {
			return &application.ValidationError{
				Field:   "variants",
				Message: fmt.Sprintf("role %s maps to unknown variant %q", role, name),
			}
		}
	}
	return nil
}

// Execute regenerates the primary's variants, then rewrites the document so
// every duplicate reference points at the primary and re-records its usages.
// A critical failure leaves the document untouched.
func (c *LinkAndRegenerateCommand) Execute(ctx context.Context) (*LinkAndRegenerateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	locked := append([]int64{c.PrimaryID}, c.DuplicateIDs...)
	unlock := c.svc.locker().LockAll(locked)
	defer unlock()

	doc, err := c.svc.loadDocument(ctx, c.DocumentID)
	if err != nil {
		return nil, err
	}
	primary, err := c.svc.getAsset(ctx, c.PrimaryID)
	if err != nil {
		return nil, err
	}

	requested := make([]string, 0, len(c.RoleVariants))
	for _, name := range c.RoleVariants {
		requested = append(requested, name)
	}

	regen, err := regenerate(ctx, c.svc, primary, requested)
	if err != nil {
		var critical *application.CriticalFailure
		if errors.As(err, &critical) {
			logging.Error().Err(err).Int64("document_id", c.DocumentID).Msg("link aborted")
			return nil, err
		}
		return nil, fmt.Errorf("failed to regenerate asset %d: %w", c.PrimaryID, err)
	}

	duplicates := make(map[int64]bool, len(c.DuplicateIDs))
	for _, id := range c.DuplicateIDs {
		duplicates[id] = true
	}
	target := c.linkTarget(primary, regen.Variants)
	merged := domain.RelinkReferences(doc.Tree, duplicates, c.PrimaryID, target)

	if merged > 0 {
		if err := c.svc.Documents.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to save document %d: %w", c.DocumentID, err)
		}
	}

	if err := c.rerecord(ctx, doc); err != nil {
		return nil, err
	}

	ghosts, err := c.deletableGhosts(ctx, doc.Tree)
	if err != nil {
		return nil, err
	}

	result := &LinkAndRegenerateResult{
		MergedCount:       merged,
		GeneratedVariants: regen.Generated,
		DeletedGhostFiles: regen.Deleted,
		Ghosts:            ghosts,
		Failures:          regen.Failures.Items,
		Verification:      regen.Mismatches,
		State:             regen.State,
	}
	result.Message = fmt.Sprintf("Linked %d reference(s) to asset %d in document %d: %d variant(s) generated, %d stale file(s) removed",
		merged, c.PrimaryID, c.DocumentID, len(regen.Generated), len(regen.Deleted))
	if len(regen.Failures.Items) > 0 {
		result.Message += fmt.Sprintf(", %d failure(s)", len(regen.Failures.Items))
	}
	return result, nil
}

// linkTarget maps a role to the url of the variant chosen for it, falling
// back to the primary's own file
func (c *LinkAndRegenerateCommand) linkTarget(primary *domain.MediaAsset, variants map[string]domain.VariantFile) domain.LinkTarget {
	original := c.svc.Files.URL(primary.File)
	return func(role domain.Role) string {
		if name, ok := c.RoleVariants[role]; ok {
			if v, ok := variants[name]; ok {
				return c.svc.Files.URL(siblingPath(primary.File, v.File))
			}
		}
		return original
	}
}

func (c *LinkAndRegenerateCommand) rerecord(ctx context.Context, doc *domain.Document) error {
	idx, err := c.svc.loadAssetIndex(ctx)
	if err != nil {
		return err
	}
	records := domain.NewExtractor(c.svc.Boxes).Extract(doc.ID, doc.Tree, idx.resolver())
	if err := c.svc.Ledger.Record(ctx, doc.ID, records); err != nil {
		return fmt.Errorf("failed to record usages of document %d: %w", doc.ID, err)
	}
	return nil
}

// deletableGhosts returns the merged duplicates the document no longer
// references that still have a media record
func (c *LinkAndRegenerateCommand) deletableGhosts(ctx context.Context, tree any) ([]int64, error) {
	ghosts := []int64{}
	for _, id := range domain.FindGhosts(tree, c.DuplicateIDs) {
		if _, err := c.svc.Media.GetAsset(ctx, id); err != nil {
			if errors.Is(err, application.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ghosts = append(ghosts, id)
	}
	sort.Slice(ghosts, func(i, j int) bool { return ghosts[i] < ghosts[j] })
	return ghosts, nil
}
