package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		includeDeleted, _ := cmd.Flags().GetBool("all")

		books, err := store.ListBooks(context.Background(), includeDeleted)
		if err != nil {
			fatal("failed to list books: %v", err)
		}

		if jsonOutput {
			outputJSON(books)
			return
		}

		if len(books) == 0 {
			fmt.Println("No books in catalog.")
			return
		}

		deleted := color.New(color.FgRed, color.CrossedOut)
		for _, b := range books {
			line := fmt.Sprintf("%-36s  %s", b.ID, b.Title)
			if b.Tombstoned() {
				deleted.Println(line)
			} else {
				fmt.Println(line)
			}
		}
	},
}

func init() {
	listCmd.Flags().Bool("all", false, "Include deleted books")
	rootCmd.AddCommand(listCmd)
}
