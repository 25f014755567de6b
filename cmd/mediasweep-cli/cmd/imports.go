package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasweep/internal/adapters/imaging"
	"mediasweep/internal/application/commands"
)

var (
	assetWidth  int
	assetHeight int
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import document trees from JSON files",
	Long: `Import documents from a JSON file or a directory of JSON files. The file
name is the document id ("42.json" is document 42).

Run scan afterwards to record the imported usages.

Examples:
  mediasweep-cli import ./export/documents`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := runtime.Documents.Import(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printResult(stats, func() {
			fmt.Printf("Imported %d of %d file(s)\n", stats.Imported, stats.FilesScanned)
			if len(stats.Skipped) > 0 {
				fmt.Printf("skipped: %s\n", strings.Join(stats.Skipped, ", "))
			}
		})
	},
}

var addAssetCmd = &cobra.Command{
	Use:   "add-asset <asset-id> <file>",
	Short: "Register a stored file as a media asset",
	Long: `Create a media record for a file under the storage root. Existing
derived files matching a configured variant are adopted. Dimensions are
read from the image unless both --width and --height are given.

Examples:
  mediasweep-cli add-asset 42 2024/05/beach.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("asset id", args[0])
		if err != nil {
			return err
		}

		width, height := assetWidth, assetHeight
		if width == 0 || height == 0 {
			resizer := imaging.NewResizer(runtime.Storage, runtime.Config.Variants.Quality)
			if width, height, err = resizer.Dimensions(args[1]); err != nil {
				return err
			}
		}

		result, err := commands.NewAddAssetCommand(GetServices(), id, args[1], width, height).Execute(context.Background())
		if err != nil {
			return err
		}
		return printResult(result, func() { fmt.Println(result.Message) })
	},
}

func init() {
	addAssetCmd.Flags().IntVar(&assetWidth, "width", 0, "width in pixels")
	addAssetCmd.Flags().IntVar(&assetHeight, "height", 0, "height in pixels")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(addAssetCmd)
}
