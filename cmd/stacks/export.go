package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	syncpkg "github.com/stacksapp/stacks/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog as a sync payload",
	Long: `Export the full catalog, tombstones included, as a JSON payload.
Writes to stdout when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dev, err := localDevice(ctx)
		if err != nil {
			fatal("failed to load device identity: %v", err)
		}

		p, err := syncpkg.Export(ctx, store, dev)
		if err != nil {
			fatal("export failed: %v", err)
		}

		data, err := p.Encode()
		if err != nil {
			fatal("export failed: %v", err)
		}

		if len(args) == 0 {
			fmt.Println(string(data))
			return
		}

		if err := os.WriteFile(args[0], data, 0600); err != nil {
			fatal("failed to write %s: %v", args[0], err)
		}
		if !jsonOutput {
			color.Green("✓ Exported %d book(s) to %s", len(p.Entities.Books), args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
