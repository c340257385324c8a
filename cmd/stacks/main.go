package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacksapp/stacks/internal/config"
	"github.com/stacksapp/stacks/internal/logging"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/storage/sqlite"
	syncpkg "github.com/stacksapp/stacks/internal/sync"
)

const defaultDBName = "stacks.db"

var (
	dbPath     string
	jsonOutput bool
	debugMode  bool
	store      storage.Storage
	log        logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stacks",
	Short: "stacks - Personal library catalog with multi-device sync",
	Long: `Track your books, authors, collections, and where everything is shelved.
Catalogs on different devices stay in sync through exported snapshots
merged with last-write-wins semantics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Priority: flags > viper (config file + env vars) > defaults
		if !cmd.Flags().Changed("json") {
			jsonOutput = config.GetBool("json")
		}
		if !cmd.Flags().Changed("db") && dbPath == "" {
			dbPath = config.GetString("db")
		}

		log = logging.New(config.GetString("log-file"), debugMode)

		// Commands that work without a database
		if cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version" {
			return
		}

		if err := openStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "Run 'stacks init' to create a catalog.\n")
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func openStore() error {
	path := dbPath
	if path == "" {
		path = findDatabase()
	}
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no catalog database at %s", path)
		}
	}

	s, err := sqlite.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store = s
	return nil
}

// findDatabase walks up from CWD looking for .stacks/stacks.db, matching
// the config file discovery rules.
func findDatabase() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".stacks", defaultDBName)
	}
	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ".stacks", defaultDBName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(cwd, ".stacks", defaultDBName)
}

// localDevice loads the device identity recorded at init time, minting an
// id on first use so catalogs created by older builds still sync.
func localDevice(ctx context.Context) (syncpkg.Device, error) {
	id, err := store.GetMeta(ctx, storage.MetaDeviceID)
	if err != nil {
		return syncpkg.Device{}, err
	}
	if id == "" {
		id = uuid.New().String()
		if err := store.SetMeta(ctx, storage.MetaDeviceID, id); err != nil {
			return syncpkg.Device{}, err
		}
	}

	name, err := store.GetMeta(ctx, storage.MetaDeviceName)
	if err != nil {
		return syncpkg.Device{}, err
	}
	if name == "" {
		name = config.GetString("device-name")
	}
	if name == "" {
		name, _ = os.Hostname()
	}

	return syncpkg.Device{ID: id, Name: name}, nil
}

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default: .stacks/stacks.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
