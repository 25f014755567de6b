package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

var usageCmd = &cobra.Command{
	Use:   "usage <asset-id>",
	Short: "Show where an asset is used",
	Long: `Show the ledger entry of an asset: every document, role and variant it
is used with, plus its variant locks.

Examples:
  mediasweep-cli usage 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("asset id", args[0])
		if err != nil {
			return err
		}

		result, err := commands.NewGetUsageLedgerEntryCommand(GetServices(), id).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			fmt.Println(result.Message)
			for _, docID := range result.Entry.DocumentIDs() {
				for _, r := range result.Entry[docID] {
					fmt.Println(formatUsage(r))
				}
			}
			for _, l := range result.Locks {
				fmt.Printf("locked %s for document %d\n", l.VariantName, l.DocumentID)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func formatUsage(r domain.UsageRecord) string {
	variant := r.VariantName
	if variant == "" {
		variant = "-"
	}
	line := fmt.Sprintf("document %d  %s  %s  %s", r.DocumentID, r.Role, variant, r.FileURL)
	if r.Dangling {
		line += "  (dangling)"
	}
	return line
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
