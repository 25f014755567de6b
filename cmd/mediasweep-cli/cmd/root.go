package cmd

import (
	"fmt"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"mediasweep/internal/application/commands"
	"mediasweep/internal/bootstrap"
	"mediasweep/internal/config"
)

var (
	configPath string
	jsonOutput bool
	runtime    *bootstrap.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "mediasweep-cli",
	Short: "CLI for reconciling media asset usage",
	Long: `mediasweep-cli keeps a media library consistent with the documents that
use it.

It scans document widget trees into a usage ledger, reports duplicate and
orphaned assets, relinks duplicates to a primary asset, regenerates its
size variants and deletes the assets left unreferenced.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var cfg *config.Config
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		bootstrap.InitLogging(cfg)

		runtime, err = bootstrap.Open(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if runtime == nil {
			return nil
		}
		return runtime.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// GetServices returns the initialized command services
func GetServices() *commands.Services {
	return runtime.Services
}

// printResult writes v as indented JSON when --json is set and calls text otherwise
func printResult(v any, text func()) error {
	if !jsonOutput {
		text()
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func parseIDArg(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, raw)
	}
	return id, nil
}
