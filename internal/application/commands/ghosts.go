package commands

import (
	"context"
	"fmt"
	"strconv"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/logging"
	"mediasweep/internal/metrics"
)

// GetGhostsCommand lists the duplicates a document no longer references
type GetGhostsCommand struct {
	svc          *Services
	PrimaryID    int64
	DuplicateIDs []int64
	DocumentID   int64
}

// GetGhostsResult contains the ghost ids
type GetGhostsResult struct {
	Ghosts  []int64
	Message string
}

// NewGetGhostsCommand creates a new ghost lookup command
func NewGetGhostsCommand(svc *Services, primaryID int64, duplicateIDs []int64, documentID int64) *GetGhostsCommand {
	return &GetGhostsCommand{
		svc:          svc,
		PrimaryID:    primaryID,
		DuplicateIDs: duplicateIDs,
		DocumentID:   documentID,
	}
}

// Validate checks if the command can be executed
func (c *GetGhostsCommand) Validate() error {
	if err := application.ValidateID("primaryID", c.PrimaryID); err != nil {
		return err
	}
	if err := application.ValidateID("documentID", c.DocumentID); err != nil {
		return err
	}
	return application.ValidateIDs("ids", c.DuplicateIDs)
}

// Execute compares the candidates with the ids the document references
func (c *GetGhostsCommand) Execute(ctx context.Context) (*GetGhostsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	doc, err := c.svc.loadDocument(ctx, c.DocumentID)
	if err != nil {
		return nil, err
	}

	candidates := make([]int64, 0, len(c.DuplicateIDs))
	for _, id := range c.DuplicateIDs {
		if id != c.PrimaryID {
			candidates = append(candidates, id)
		}
	}

	ghosts := domain.FindGhosts(doc.Tree, candidates)
	return &GetGhostsResult{
		Ghosts:  ghosts,
		Message: fmt.Sprintf("%d of %d duplicate(s) no longer referenced by document %d", len(ghosts), len(candidates), c.DocumentID),
	}, nil
}

// DeleteGhostsCommand permanently removes ghost assets and their files
type DeleteGhostsCommand struct {
	svc *Services
	IDs []int64
}

// DeleteGhostsResult contains the result of a ghost deletion
type DeleteGhostsResult struct {
	DeletedCount int
	Deleted      []int64
	Failures     []application.FailedItem
	Message      string
}

// NewDeleteGhostsCommand creates a new ghost deletion command
func NewDeleteGhostsCommand(svc *Services, ids []int64) *DeleteGhostsCommand {
	return &DeleteGhostsCommand{svc: svc, IDs: ids}
}

// Validate checks if the command can be executed
func (c *DeleteGhostsCommand) Validate() error {
	return application.ValidateIDs("ids", c.IDs)
}

// Execute deletes each asset that no document uses. Every id must resolve
// before anything is deleted; assets still in the ledger are refused and
// reported as failures.
func (c *DeleteGhostsCommand) Execute(ctx context.Context) (*DeleteGhostsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unlock := c.svc.locker().LockAll(c.IDs)
	defer unlock()

	seen := make(map[int64]bool, len(c.IDs))
	var ids []int64
	for _, id := range c.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := c.svc.getAsset(ctx, id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	failures := &application.PartialFailure{Op: "delete ghosts"}
	result := &DeleteGhostsResult{Deleted: []int64{}}
	for _, id := range ids {
		entry, err := c.svc.Ledger.UsagesFor(ctx, id)
		if err != nil {
			failures.Add(strconv.FormatInt(id, 10), err.Error())
			continue
		}
		if len(entry) > 0 {
			refused := &application.ReferencedError{AssetID: id, Documents: entry.DocumentIDs()}
			failures.Add(strconv.FormatInt(id, 10), refused.Error())
			continue
		}
		if err := c.svc.Media.DeleteAsset(ctx, id, true); err != nil {
			failures.Add(strconv.FormatInt(id, 10), err.Error())
			continue
		}
		result.Deleted = append(result.Deleted, id)
		logging.Info().Int64("asset_id", id).Msg("ghost deleted")
	}

	result.DeletedCount = len(result.Deleted)
	result.Failures = failures.Items
	metrics.RecordGhostDeletion(result.DeletedCount)

	result.Message = fmt.Sprintf("Deleted %d of %d ghost asset(s)", result.DeletedCount, len(ids))
	if !failures.Empty() {
		result.Message += ": " + failures.Error()
	}
	return result, nil
}
