// Package providers contains dependency injection providers for the recipe
// catalogue.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/logger"
)

// ProvideConfig provides the application configuration, built from the
// command-line flags registered with the injector.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags := do.MustInvoke[config.Flags](i)
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
		FilePath:    cfg.Logger.File,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"in_memory", cfg.Data.InMemory,
		"catalogue", cfg.Catalogue.Path,
	)

	return log, nil
}
