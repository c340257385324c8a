package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/payload"
	syncpkg "github.com/stacksapp/stacks/internal/sync"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a sync payload into the catalog",
	Long: `Merge a payload exported by another device. Newer remote edits win,
local edits survive older remote copies, and deletions propagate. The
merge is atomic: on any failure the catalog is left untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("failed to read %s: %v", args[0], err)
		}

		p, err := payload.Decode(data)
		if err != nil {
			fatal("invalid payload: %v", err)
		}

		ctx := context.Background()
		log.Info(ctx, "importing payload", "file", args[0], "device", p.DeviceID)

		summary, err := syncpkg.Import(ctx, store, p)
		if err != nil {
			fatal("import failed: %v", err)
		}

		printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
