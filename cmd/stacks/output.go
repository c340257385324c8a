package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	syncpkg "github.com/stacksapp/stacks/internal/sync"
)

func outputJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// printSummary renders a merge summary, skipping entity types nothing
// happened to.
func printSummary(s *syncpkg.Summary) {
	if jsonOutput {
		outputJSON(s)
		return
	}

	if s.TotalChanges == 0 {
		color.Green("✓ Already up to date")
		return
	}

	rows := []struct {
		name   string
		counts syncpkg.Counts
	}{
		{"books", s.Books},
		{"authors", s.Authors},
		{"collections", s.Collections},
		{"storage locations", s.StorageLocations},
		{"reading sessions", s.ReadingSessions},
		{"filter presets", s.FilterPresets},
		{"vocabulary", s.VocabCustom},
		{"storage history", s.BookStorageHistory},
	}

	for _, row := range rows {
		c := row.counts
		if c.Inserted == 0 && c.Updated == 0 && c.Deleted == 0 {
			continue
		}
		fmt.Printf("  %-18s", row.name)
		if c.Inserted > 0 {
			color.New(color.FgGreen).Printf(" +%d", c.Inserted)
		}
		if c.Updated > 0 {
			color.New(color.FgYellow).Printf(" ~%d", c.Updated)
		}
		if c.Deleted > 0 {
			color.New(color.FgRed).Printf(" -%d", c.Deleted)
		}
		fmt.Println()
	}
	color.Green("✓ Merged %d change(s)", s.TotalChanges)
}
