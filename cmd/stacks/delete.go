package main

import (
	"context"
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/storage"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <book-id>",
	Short: "Delete a book",
	Long: `Delete a book from the catalog. The row is tombstoned, not removed,
so the deletion propagates to other devices on the next sync.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := store.SoftDeleteBook(context.Background(), args[0], nowISO())
		if errors.Is(err, storage.ErrNotFound) {
			fatal("no live book with id %s", args[0])
		}
		if err != nil {
			fatal("failed to delete book: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"deleted": args[0]})
			return
		}
		color.Green("✓ Deleted %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
