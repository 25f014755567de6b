package commands

import (
	"context"
	"fmt"
	"sort"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
)

// SuggestVariantCommand preselects the variant best suited to a role
type SuggestVariantCommand struct {
	svc     *Services
	AssetID int64
	Role    domain.Role
}

// SuggestVariantResult contains the suggestion
type SuggestVariantResult struct {
	Role      domain.Role
	Variant   string
	Found     bool
	Available []string
	Message   string
}

// NewSuggestVariantCommand creates a new suggestion command
func NewSuggestVariantCommand(svc *Services, assetID int64, role domain.Role) *SuggestVariantCommand {
	return &SuggestVariantCommand{svc: svc, AssetID: assetID, Role: role}
}

// Validate checks if the command can be executed
func (c *SuggestVariantCommand) Validate() error {
	return application.ValidateID("assetID", c.AssetID)
}

// Execute picks from the variants the asset has. When it has none yet the
// configured sizes are offered instead.
func (c *SuggestVariantCommand) Execute(ctx context.Context) (*SuggestVariantResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	asset, err := c.svc.getAsset(ctx, c.AssetID)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, len(asset.Variants))
	for name := range asset.Variants {
		if name != domain.ScaledMasterName {
			available = append(available, name)
		}
	}
	if len(available) == 0 {
		for _, b := range c.svc.Boxes {
			available = append(available, b.Name)
		}
	}
	sort.Strings(available)

	role := c.Role
	if role == "" {
		role = domain.RoleOther
	}
	name, ok := domain.PreselectVariant(role, available)

	result := &SuggestVariantResult{Role: role, Variant: name, Found: ok, Available: available}
	if ok {
		result.Message = fmt.Sprintf("Suggested %s for role %s", name, role)
	} else {
		result.Message = fmt.Sprintf("No suitable variant for role %s", role)
	}
	return result, nil
}
