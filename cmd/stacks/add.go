package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/types"
)

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a book to the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		authorName, _ := cmd.Flags().GetString("author")
		isbn, _ := cmd.Flags().GetString("isbn")
		publisher, _ := cmd.Flags().GetString("publisher")
		year, _ := cmd.Flags().GetInt("year")
		notes, _ := cmd.Flags().GetString("notes")

		ctx := context.Background()
		now := nowISO()

		book := &types.Book{
			SyncMeta: types.SyncMeta{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Title:         strings.TrimSpace(args[0]),
			ISBN:          isbn,
			Publisher:     publisher,
			PublishedYear: year,
			Notes:         notes,
		}

		if err := store.CreateBook(ctx, book); err != nil {
			fatal("failed to add book: %v", err)
		}

		if authorName != "" {
			author, err := findOrCreateAuthor(ctx, authorName, now)
			if err != nil {
				fatal("failed to add author: %v", err)
			}
			if err := store.AddBookAuthor(ctx, book.ID, author.ID); err != nil {
				fatal("failed to link author: %v", err)
			}
		}

		if jsonOutput {
			outputJSON(book)
			return
		}
		color.Green("✓ Added %s", book.Title)
		fmt.Printf("  id: %s\n", book.ID)
	},
}

// findOrCreateAuthor matches on exact name among live authors.
func findOrCreateAuthor(ctx context.Context, name, now string) (*types.Author, error) {
	authors, err := store.ListAuthors(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, a := range authors {
		if a.Name == name {
			return a, nil
		}
	}

	author := &types.Author{
		SyncMeta: types.SyncMeta{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
	}
	if err := store.CreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func init() {
	addCmd.Flags().StringP("author", "a", "", "Author name (created if unknown)")
	addCmd.Flags().String("isbn", "", "ISBN")
	addCmd.Flags().String("publisher", "", "Publisher")
	addCmd.Flags().Int("year", 0, "Publication year")
	addCmd.Flags().String("notes", "", "Free-form notes")
	rootCmd.AddCommand(addCmd)
}
