package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediasweep/internal/application/commands"
)

var (
	scanWorkers int
	scanTimeout time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rebuild the usage ledger from every document",
	Long: `Scan every document, record its media usages in the ledger and rebuild
the corpus record of duplicate groups and orphan files.

An aborted scan keeps the previous corpus record.

Examples:
  mediasweep-cli scan
  mediasweep-cli scan --workers 8 --timeout 30m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := runtime.Config
		workers, timeout := cfg.Scan.Workers, cfg.Scan.Timeout
		if cmd.Flags().Changed("workers") {
			workers = scanWorkers
		}
		if cmd.Flags().Changed("timeout") {
			timeout = scanTimeout
		}

		result, err := commands.NewScanCorpusCommand(GetServices(), workers, timeout).Execute(context.Background())
		if err != nil {
			return err
		}
		if err := printResult(result, func() { fmt.Println(result.Message) }); err != nil {
			return err
		}
		if result.Summary.Aborted {
			return fmt.Errorf("scan %s aborted", result.Summary.RunID)
		}
		return nil
	},
}

var lastScanCmd = &cobra.Command{
	Use:   "last-scan",
	Short: "Show the stored corpus record",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewLastScanCommand(GetServices()).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			s := result.Summary
			fmt.Printf("run %s at %s in %s\n", s.RunID, s.StartedAt.Format("2006-01-02 15:04:05"), s.Duration.Round(time.Millisecond))
			fmt.Printf("%d documents, %d assets, %d uses, %d dangling\n", s.Documents, s.Assets, s.Uses, s.Dangling)
			fmt.Printf("%d duplicate groups, %d orphan files\n", len(result.Duplicates), len(result.Orphans))
			if len(s.Failed) > 0 {
				fmt.Printf("failed documents: %s\n", joinIDs(s.Failed))
			}
		})
	},
}

func init() {
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "number of documents extracted concurrently")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "abort the scan after this duration")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(lastScanCmd)
}
