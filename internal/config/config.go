// Package config provides application configuration with support for
// command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Catalogue CatalogueConfig
	Deck      DeckConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
	File  string // Optional rotating log file
}

// DataConfig holds storage locations.
type DataConfig struct {
	BasePath string
	// InMemory keeps every store in memory; nothing survives the process.
	InMemory bool
}

// DBPath returns the SQLite database file location.
func (d DataConfig) DBPath() string { return filepath.Join(d.BasePath, "rezepte.db") }

// PrefsPath returns the preference store directory.
func (d DataConfig) PrefsPath() string { return filepath.Join(d.BasePath, "prefs") }

// CatalogueConfig holds bootstrap catalogue configuration.
type CatalogueConfig struct {
	// Path to a JSON or YAML catalogue. Empty uses the bundled catalogue.
	Path string
	// AssetsPath is the directory image names are resolved against.
	// Defaults to the catalogue's directory.
	AssetsPath string
}

// DeckConfig holds swipe deck configuration.
type DeckConfig struct {
	PeekSize int
}

// Flags carries command-line overrides. Empty values fall through to the
// environment, then to defaults.
type Flags struct {
	Environment   string
	LogLevel      string
	LogFile       string
	DataPath      string
	InMemory      string
	CataloguePath string
	AssetsPath    string
	EnvFile       string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(f Flags) (*Config, error) {
	envFile := f.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && f.EnvFile != "" {
		return nil, fmt.Errorf("load env file %q: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
			File:  getConfigValue(f.LogFile, "LOG_FILE", ""),
		},
		Data: DataConfig{
			BasePath: getConfigValue(f.DataPath, "DATA_PATH", ""),
			InMemory: getBoolConfigValue(f.InMemory, "STORE_IN_MEMORY", false),
		},
		Catalogue: CatalogueConfig{
			Path:       getConfigValue(f.CataloguePath, "CATALOGUE_PATH", ""),
			AssetsPath: getConfigValue(f.AssetsPath, "CATALOGUE_ASSETS_PATH", ""),
		},
		Deck: DeckConfig{
			PeekSize: getIntConfigValue("", "DECK_PEEK_SIZE", 3),
		},
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"test":        true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, test, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" && !c.Data.InMemory {
		return errors.New("data path cannot be empty for a durable store")
	}

	if c.Deck.PeekSize < 1 {
		return fmt.Errorf("invalid deck peek size: %d (must be at least 1)", c.Deck.PeekSize)
	}

	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(homeDir, "Lieblingsgerichte")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Logger.File, err = expandPath(c.Logger.File, ""); err != nil {
		return fmt.Errorf("invalid log file: %w", err)
	}
	if c.Catalogue.Path, err = expandPath(c.Catalogue.Path, ""); err != nil {
		return fmt.Errorf("invalid catalogue path: %w", err)
	}

	assetsDefault := ""
	if c.Catalogue.Path != "" {
		assetsDefault = filepath.Dir(c.Catalogue.Path)
	}
	if c.Catalogue.AssetsPath, err = expandPath(c.Catalogue.AssetsPath, assetsDefault); err != nil {
		return fmt.Errorf("invalid catalogue assets path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}
