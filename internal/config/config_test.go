package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) }) //nolint:errcheck // Test cleanup
		} else {
			t.Cleanup(func() { os.Unsetenv(key) }) //nolint:errcheck // Test cleanup
		}
		os.Unsetenv(key) //nolint:errcheck // Test setup
	}
}

var configKeys = []string{
	"ENV", "LOG_LEVEL", "LOG_FILE", "DATA_PATH", "STORE_IN_MEMORY",
	"CATALOGUE_PATH", "CATALOGUE_ASSETS_PATH", "DECK_PEEK_SIZE",
}

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Deck:   DeckConfig{PeekSize: 3},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"test", true},
		{"production", true},
		{"staging", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "WARN"
	assert.NoError(t, cfg.Validate())

	cfg.Logger.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestValidate_DataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())

	// In-memory stores need no directory.
	cfg.Data.InMemory = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PeekSize(t *testing.T) {
	cfg := validConfig()
	cfg.Deck.PeekSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg, err := LoadConfig(Flags{EnvFile: ""})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, filepath.Join(home, "Lieblingsgerichte"), cfg.Data.BasePath)
	assert.False(t, cfg.Data.InMemory)
	assert.Empty(t, cfg.Catalogue.Path)
	assert.Empty(t, cfg.Catalogue.AssetsPath)
	assert.Equal(t, 3, cfg.Deck.PeekSize)
	assert.Equal(t, filepath.Join(home, "Lieblingsgerichte", "rezepte.db"), cfg.Data.DBPath())
}

func TestLoadConfig_Precedence(t *testing.T) {
	unsetEnv(t, configKeys...)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := `# local overrides
LOG_LEVEL=debug
DATA_PATH=/from/envfile
STORE_IN_MEMORY=yes
DECK_PEEK_SIZE=5
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	t.Setenv("DATA_PATH", "/from/env")

	cfg, err := LoadConfig(Flags{
		EnvFile:       envFile,
		LogLevel:      "warn",
		CataloguePath: filepath.Join(dir, "katalog", "recipes.yaml"),
	})
	require.NoError(t, err)

	// Flag beats .env.
	assert.Equal(t, "warn", cfg.Logger.Level)
	// Real environment beats .env.
	assert.Equal(t, "/from/env", cfg.Data.BasePath)
	// .env beats defaults.
	assert.True(t, cfg.Data.InMemory)
	assert.Equal(t, 5, cfg.Deck.PeekSize)
	// Assets default to the catalogue directory.
	assert.Equal(t, filepath.Join(dir, "katalog"), cfg.Catalogue.AssetsPath)
}

func TestLoadConfig_MissingExplicitEnvFile(t *testing.T) {
	unsetEnv(t, configKeys...)

	_, err := LoadConfig(Flags{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/Rezepte", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Rezepte"), got)

	got, err = expandPath("relative/path", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, filepath.Join("relative", "path"))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "REZEPTE_TEST_KEY", "default-value"))

	t.Setenv("REZEPTE_TEST_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "REZEPTE_TEST_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "REZEPTE_NONEXISTENT_KEY", "default-value"))
}

func TestGetIntConfigValue_InvalidFallsBack(t *testing.T) {
	t.Setenv("REZEPTE_TEST_INT", "many")
	assert.Equal(t, 3, getIntConfigValue("", "REZEPTE_TEST_INT", 3))
}
