package commands

import (
	"context"
	"fmt"
	"strings"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
)

// LockVariantCommand protects a variant of an asset on behalf of a document,
// or releases that protection
type LockVariantCommand struct {
	svc         *Services
	AssetID     int64
	DocumentID  int64
	VariantName string
	Unlock      bool
}

// LockVariantResult contains the result of a lock change
type LockVariantResult struct {
	Entry   domain.LockEntry
	Locked  bool
	Message string
}

// NewLockVariantCommand creates a command that locks a variant
func NewLockVariantCommand(svc *Services, assetID, documentID int64, variantName string) *LockVariantCommand {
	return &LockVariantCommand{
		svc:         svc,
		AssetID:     assetID,
		DocumentID:  documentID,
		VariantName: variantName,
	}
}

// NewUnlockVariantCommand creates a command that releases a variant lock
func NewUnlockVariantCommand(svc *Services, assetID, documentID int64, variantName string) *LockVariantCommand {
	cmd := NewLockVariantCommand(svc, assetID, documentID, variantName)
	cmd.Unlock = true
	return cmd
}

// Validate checks if the command can be executed
func (c *LockVariantCommand) Validate() error {
	if err := application.ValidateID("assetID", c.AssetID); err != nil {
		return err
	}
	if err := application.ValidateID("documentID", c.DocumentID); err != nil {
		return err
	}
	return application.ValidateRequired("variantName", c.VariantName)
}

// Execute stores or removes the lock. Both directions are idempotent.
func (c *LockVariantCommand) Execute(ctx context.Context) (*LockVariantResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entry := domain.LockEntry{
		AssetID:     c.AssetID,
		DocumentID:  c.DocumentID,
		VariantName: strings.TrimSpace(c.VariantName),
	}

	if c.Unlock {
		if err := c.svc.Ledger.Unlock(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to unlock variant: %w", err)
		}
		return &LockVariantResult{
			Entry:   entry,
			Message: fmt.Sprintf("Unlocked %s of asset %d for document %d", entry.VariantName, entry.AssetID, entry.DocumentID),
		}, nil
	}

	if _, err := c.svc.getAsset(ctx, c.AssetID); err != nil {
		return nil, err
	}
	if _, err := c.svc.loadDocument(ctx, c.DocumentID); err != nil {
		return nil, err
	}
	if err := c.svc.Ledger.Lock(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to lock variant: %w", err)
	}
	return &LockVariantResult{
		Entry:   entry,
		Locked:  true,
		Message: fmt.Sprintf("Locked %s of asset %d for document %d", entry.VariantName, entry.AssetID, entry.DocumentID),
	}, nil
}
