package providers

import (
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/lieblingsgerichte/rezepte/internal/catalog"
	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/logger"
	"github.com/lieblingsgerichte/rezepte/internal/query"
	"github.com/lieblingsgerichte/rezepte/internal/service"
	"github.com/lieblingsgerichte/rezepte/internal/validation"
)

// ProvideValidator provides the input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideQueryEngine provides the recipe query engine.
func ProvideQueryEngine(i do.Injector) (*query.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return query.New(storeHandle.Store), nil
}

// ProvideImporter provides the catalogue importer.
func ProvideImporter(i do.Injector) (*catalog.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	loader := do.MustInvoke[catalog.ImageLoader](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewImporter(storeHandle.Store, loader, log.WithField("component", "importer").Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*query.Engine](i)
	prefsHandle := do.MustInvoke[*PrefsHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, engine, prefsHandle.Store, v, log.WithField("component", "recipes").Logger), nil
}

// ProvideBootstrapper provides the startup sequence.
func ProvideBootstrapper(i do.Injector) (*service.Bootstrapper, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	importer := do.MustInvoke[*catalog.Importer](i)
	fsys := do.MustInvoke[afero.Fs](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBootstrapper(storeHandle.Store, importer, fsys, cfg.Catalogue.Path, log.WithField("component", "bootstrap").Logger), nil
}
