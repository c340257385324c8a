package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton
// Should be called once at application startup
func Initialize() error {
	v = viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths, in order of precedence:
	// 1. Walk up from CWD to find a project .stacks/ directory, so
	//    commands work from subdirectories of the catalog.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			stacksDir := filepath.Join(dir, ".stacks")
			if info, err := os.Stat(stacksDir); err == nil && info.IsDir() {
				v.AddConfigPath(stacksDir)
				break
			}
		}
		v.AddConfigPath(filepath.Join(cwd, ".stacks"))
	}

	// 2. User config directory (~/.config/stacks/)
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "stacks"))
	}

	// 3. Home directory (~/.stacks/)
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".stacks"))
	}

	// Environment variables take precedence over the config file.
	// E.g. STACKS_DB, STACKS_DEVICE_NAME, STACKS_S3_BUCKET.
	v.SetEnvPrefix("STACKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "")
	v.SetDefault("device-name", "")
	v.SetDefault("json", false)
	v.SetDefault("log-file", "")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access-key", "")
	v.SetDefault("s3.secret-key", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "devices")

	// Config file is optional; defaults apply when it is absent.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
