package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

var lockCmd = &cobra.Command{
	Use:   "lock <asset-id> <document-id> <variant>",
	Short: "Protect a variant of an asset from stale-file cleanup",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLock(args, false)
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <asset-id> <document-id> <variant>",
	Short: "Remove a variant lock",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLock(args, true)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <asset-id> [role]",
	Short: "Suggest the variant an asset should use for a role",
	Long: `Suggest a variant for a usage role, among the asset's variants.

Roles: hero, background, carousel, gallery, avatar, icon, logo, video-poster, other.

Examples:
  mediasweep-cli suggest 5 hero
  mediasweep-cli suggest 5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("asset id", args[0])
		if err != nil {
			return err
		}
		var role domain.Role
		if len(args) == 2 {
			role = domain.Role(args[1])
		}

		result, err := commands.NewSuggestVariantCommand(GetServices(), id, role).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			if result.Found {
				fmt.Printf("%s: %s\n", result.Role, result.Variant)
			} else {
				fmt.Printf("%s: no suggestion\n", result.Role)
			}
			fmt.Printf("available: %s\n", strings.Join(result.Available, ", "))
		})
	},
}

func runLock(args []string, unlock bool) error {
	assetID, err := parseIDArg("asset id", args[0])
	if err != nil {
		return err
	}
	documentID, err := parseIDArg("document id", args[1])
	if err != nil {
		return err
	}

	c := commands.NewLockVariantCommand(GetServices(), assetID, documentID, args[2])
	if unlock {
		c = commands.NewUnlockVariantCommand(GetServices(), assetID, documentID, args[2])
	}
	result, err := c.Execute(context.Background())
	if err != nil {
		return err
	}
	return printResult(result, func() { fmt.Println(result.Message) })
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(suggestCmd)
}
