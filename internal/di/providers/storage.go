package providers

import (
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/lieblingsgerichte/rezepte/internal/catalog"
	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/logger"
	"github.com/lieblingsgerichte/rezepte/internal/media/images"
)

// ProvideFS provides the filesystem catalogue files are read from.
func ProvideFS(i do.Injector) (afero.Fs, error) {
	return afero.NewOsFs(), nil
}

// ProvideImageLoader provides the catalogue image resolver. Without an
// assets directory it is nil and catalogue recipes are imported without
// photos.
func ProvideImageLoader(i do.Injector) (catalog.ImageLoader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalogue.AssetsPath == "" {
		log.Debug("no catalogue assets directory configured")
		return nil, nil
	}
	return images.NewAssetsDir(cfg.Catalogue.AssetsPath), nil
}
