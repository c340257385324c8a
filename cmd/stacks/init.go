package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/config"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a catalog in the current directory",
	Long: `Initialize a catalog by creating a .stacks/ directory with a database
file. Each catalog gets a device id used to tell apart the sources of
synced changes.`,
	Run: func(cmd *cobra.Command, _ []string) {
		deviceName, _ := cmd.Flags().GetString("device-name")

		initDBPath := dbPath
		if initDBPath == "" {
			initDBPath = config.GetString("db")
		}
		if initDBPath == "" {
			initDBPath = filepath.Join(".stacks", defaultDBName)
		}

		s, err := sqlite.New(initDBPath)
		if err != nil {
			fatal("failed to create database: %v", err)
		}
		defer s.Close()

		ctx := context.Background()

		// Re-running init keeps the existing identity.
		existing, err := s.GetMeta(ctx, storage.MetaDeviceID)
		if err != nil {
			fatal("failed to read device id: %v", err)
		}
		if existing == "" {
			if err := s.SetMeta(ctx, storage.MetaDeviceID, uuid.New().String()); err != nil {
				fatal("failed to store device id: %v", err)
			}
		}

		if deviceName == "" {
			deviceName = config.GetString("device-name")
		}
		if deviceName == "" {
			deviceName, _ = os.Hostname()
		}
		if err := s.SetMeta(ctx, storage.MetaDeviceName, deviceName); err != nil {
			fatal("failed to store device name: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{
				"db":          s.Path(),
				"device_name": deviceName,
			})
			return
		}
		color.Green("✓ Initialized catalog at %s", s.Path())
		fmt.Printf("  Device: %s\n", deviceName)
	},
}

func init() {
	initCmd.Flags().String("device-name", "", "Human-readable name for this device")
	rootCmd.AddCommand(initCmd)
}
