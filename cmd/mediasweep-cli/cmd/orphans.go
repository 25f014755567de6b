package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mediasweep/internal/application/commands"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List storage files no document uses",
	Long: `Walk the storage tree and list image files whose base key appears in no
usage record. Nothing is deleted.

Examples:
  mediasweep-cli orphans
  mediasweep-cli orphans --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewFindOrphansCommand(GetServices()).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			for _, o := range result.Orphans {
				fmt.Printf("%s  %s  %d bytes\n", o.Path, o.BaseKey, o.SizeBytes)
			}
			fmt.Println(result.Message)
		})
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
}
