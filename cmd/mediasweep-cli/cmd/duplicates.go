package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

var (
	duplicatesDocument int64
	linkDuplicates     string
	linkVariants       string
	linkDeleteGhosts   bool
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List duplicate asset groups",
	Long: `List groups of assets sharing a base key. Without --document the groups
come from the ledger; with it the document is extracted afresh.

Examples:
  mediasweep-cli duplicates
  mediasweep-cli duplicates --document 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		var result *commands.FindDuplicatesResult
		var err error
		if duplicatesDocument != 0 {
			result, err = commands.NewFindDuplicatesForDocumentCommand(GetServices(), duplicatesDocument).Execute(ctx)
		} else {
			result, err = commands.NewFindDuplicatesCommand(GetServices()).Execute(ctx)
		}
		if err != nil {
			return err
		}
		return printResult(result, func() {
			for _, g := range result.Groups {
				fmt.Printf("%s  primary %d\n", g.BaseKey, g.PrimaryID)
				for _, d := range g.Duplicates {
					fmt.Printf("  %d  %s  %s\n", d.ID, d.Source, d.File)
				}
			}
			fmt.Println(result.Message)
		})
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <primary-id> <document-id>",
	Short: "Relink duplicates to a primary asset and regenerate its variants",
	Long: `Regenerate the variants the document needs from the primary asset, then
point every reference to a duplicate at the primary.

--variants maps roles to variant names as role=variant pairs.

Examples:
  mediasweep-cli link 5 7 --duplicates 99,12 --variants hero=hero,carousel=carousel-photo
  mediasweep-cli link 5 7 --duplicates 99 --variants hero=hero --delete-ghosts`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		primaryID, err := parseIDArg("primary id", args[0])
		if err != nil {
			return err
		}
		documentID, err := parseIDArg("document id", args[1])
		if err != nil {
			return err
		}
		duplicates, err := application.ParseIDList("duplicates", linkDuplicates)
		if err != nil {
			return err
		}
		variants, err := application.ParseRoleVariants(linkVariants)
		if err != nil {
			return err
		}

		ctx := context.Background()
		result, err := commands.NewLinkAndRegenerateCommand(GetServices(), primaryID, duplicates, variants, documentID).Execute(ctx)
		if err != nil {
			return err
		}
		if err := printResult(result, func() { printLink(result) }); err != nil {
			return err
		}

		if !linkDeleteGhosts || len(result.Ghosts) == 0 {
			return nil
		}
		deleted, err := commands.NewDeleteGhostsCommand(GetServices(), result.Ghosts).Execute(ctx)
		if err != nil {
			return err
		}
		return printResult(deleted, func() { printDeleted(deleted) })
	},
}

var ghostsCmd = &cobra.Command{
	Use:   "ghosts <primary-id> <document-id> <duplicate-ids>",
	Short: "List duplicates a document no longer references",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		primaryID, err := parseIDArg("primary id", args[0])
		if err != nil {
			return err
		}
		documentID, err := parseIDArg("document id", args[1])
		if err != nil {
			return err
		}
		duplicates, err := application.ParseIDList("duplicate ids", args[2])
		if err != nil {
			return err
		}

		result, err := commands.NewGetGhostsCommand(GetServices(), primaryID, duplicates, documentID).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			fmt.Println(result.Message)
			if len(result.Ghosts) > 0 {
				fmt.Println(joinIDs(result.Ghosts))
			}
		})
	},
}

var deleteGhostsCmd = &cobra.Command{
	Use:   "delete-ghosts <ids>",
	Short: "Delete unreferenced assets and their files",
	Long: `Delete media records and their files. Assets still in the ledger are
refused; an unknown id fails the whole batch.

Examples:
  mediasweep-cli delete-ghosts 99,12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := application.ParseIDList("ids", args[0])
		if err != nil {
			return err
		}
		result, err := commands.NewDeleteGhostsCommand(GetServices(), ids).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() { printDeleted(result) })
	},
}

func init() {
	duplicatesCmd.Flags().Int64VarP(&duplicatesDocument, "document", "d", 0, "restrict to one document")
	linkCmd.Flags().StringVar(&linkDuplicates, "duplicates", "", "comma-separated duplicate asset ids")
	linkCmd.Flags().StringVar(&linkVariants, "variants", "", "role=variant pairs, comma-separated")
	linkCmd.Flags().BoolVar(&linkDeleteGhosts, "delete-ghosts", false, "delete the assets the link left unreferenced")
	_ = linkCmd.MarkFlagRequired("variants")

	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(ghostsCmd)
	rootCmd.AddCommand(deleteGhostsCmd)
}

func printLink(r *commands.LinkAndRegenerateResult) {
	fmt.Println(r.Message)
	if len(r.GeneratedVariants) > 0 {
		fmt.Printf("generated: %v\n", r.GeneratedVariants)
	}
	if len(r.DeletedGhostFiles) > 0 {
		fmt.Printf("removed stale files: %v\n", r.DeletedGhostFiles)
	}
	printFailures(r.Failures)
	if len(r.Verification) > 0 {
		fmt.Printf("missing after regeneration: %v\n", r.Verification)
	}
	if r.State != domain.RegenVerified {
		fmt.Printf("state: %s\n", r.State)
	}
	if len(r.Ghosts) > 0 {
		fmt.Printf("ghosts: %s\n", joinIDs(r.Ghosts))
	}
}

func printDeleted(r *commands.DeleteGhostsResult) {
	fmt.Println(r.Message)
	printFailures(r.Failures)
}

func printFailures(failures []application.FailedItem) {
	for _, f := range failures {
		fmt.Printf("  failed %s: %s\n", f.ID, f.Reason)
	}
}
