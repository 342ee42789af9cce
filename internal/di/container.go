// Package di provides dependency injection configuration for the recipe
// catalogue.
package di

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/di/providers"
	"github.com/lieblingsgerichte/rezepte/internal/logger"
	"github.com/lieblingsgerichte/rezepte/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, flags)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvidePrefs)
	do.Provide(injector, providers.ProvideFS)
	do.Provide(injector, providers.ProvideImageLoader)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideQueryEngine)
	do.Provide(injector, providers.ProvideImporter)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideBootstrapper)

	return injector
}

// Bootstrap opens the stores and runs the startup sequence: catalogue
// import into an empty store, then the orphaned tag sweep.
func Bootstrap(ctx context.Context, injector do.Injector) (*service.BootstrapResult, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.PrefsHandle](injector); err != nil {
		return nil, err
	}

	bootstrapper, err := do.Invoke[*service.Bootstrapper](injector)
	if err != nil {
		return nil, err
	}
	return bootstrapper.Run(ctx)
}

// Shutdown closes every store and then the log file.
func Shutdown(injector *do.RootScope) error {
	log, logErr := do.Invoke[*logger.Logger](injector)

	var errs []error
	if report := injector.Shutdown(); report != nil && !report.Succeed {
		if logErr == nil {
			log.WithError(report).Warn("shutdown incomplete")
		}
		errs = append(errs, report)
	}
	if logErr == nil {
		errs = append(errs, log.Close())
	}
	return errors.Join(errs...)
}
