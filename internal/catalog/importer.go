package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/errors"
	"github.com/lieblingsgerichte/rezepte/internal/store/sqlite"
)

// ImageLoader turns a catalogue image name into a stored photo.
type ImageLoader interface {
	Load(name string) (*domain.Image, error)
}

// Result summarises an import run.
type Result struct {
	Source string
	// Skipped is set when the store already held recipes.
	Skipped  bool
	Existing int

	Recipes     int
	Ingredients int
	Tags        int
	Images      int
	// MissingImages lists image names that could not be loaded.
	MissingImages []string
	Duration      time.Duration
}

// Importer fills an empty entity store from a catalogue.
type Importer struct {
	store  *sqlite.Store
	images ImageLoader
	logger *slog.Logger
}

// NewImporter creates an Importer. images may be nil, in which case entries
// are imported without photos.
func NewImporter(s *sqlite.Store, images ImageLoader, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: s, images: images, logger: logger}
}

// ImportIfEmpty imports every catalogue entry in a single transaction, but
// only when the store holds no recipes. Running it again after a successful
// import is a no-op. If the final save fails nothing is imported and the
// next call tries again.
func (i *Importer) ImportIfEmpty(ctx context.Context, cat *Catalogue) (*Result, error) {
	start := time.Now()
	result := &Result{Source: cat.Source}

	tx, err := i.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Save

	existing, err := tx.CountRecipes(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		i.logger.Debug("recipes already present, catalogue import skipped", "count", existing)
		result.Skipped = true
		result.Existing = existing
		return result, nil
	}

	tagIDs := make(map[string]struct{})
	for _, e := range cat.Entries {
		img := i.resolveImage(ctx, e, result)

		recipeID, err := tx.CreateRecipe(ctx, e.Title, e.Description, img)
		if err != nil {
			return nil, err
		}
		for _, name := range e.IngredientNames() {
			if _, err := tx.AddIngredient(ctx, recipeID, name); err != nil {
				return nil, err
			}
			result.Ingredients++
		}
		for _, name := range domain.UniqueNames(e.TagNames()) {
			tagID, err := tx.FindOrCreateTag(ctx, name)
			if err != nil {
				return nil, err
			}
			if err := tx.AttachTag(ctx, recipeID, tagID); err != nil {
				return nil, err
			}
			tagIDs[tagID] = struct{}{}
		}
		result.Recipes++
	}

	if err := tx.Save(ctx); err != nil {
		i.logger.Error("catalogue import failed, store left empty",
			"source", cat.Source,
			"error", err,
		)
		return nil, err
	}

	result.Tags = len(tagIDs)
	result.Duration = time.Since(start)

	i.logger.Info("catalogue imported",
		"source", cat.Source,
		"recipes", result.Recipes,
		"tags", result.Tags,
		"images", result.Images,
		"missing_images", len(result.MissingImages),
		"duration", result.Duration,
	)
	return result, nil
}

// LoadAndImport imports the catalogue at path, or the bundled one when path
// is empty. The file is only read when the store is empty. A catalogue that
// cannot be decoded aborts the import with an ImportDecode error and leaves
// the store untouched.
func (i *Importer) LoadAndImport(ctx context.Context, fsys afero.Fs, path string) (*Result, error) {
	existing, err := i.store.CountRecipes(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &Result{Source: path, Skipped: true, Existing: existing}, nil
	}

	var cat *Catalogue
	if path == "" {
		cat, err = Default()
	} else {
		cat, err = LoadCatalogue(fsys, path)
	}
	if err != nil {
		i.logger.Warn("catalogue could not be decoded, import will be retried on next start",
			"path", path,
			"error", err,
		)
		return nil, err
	}

	return i.ImportIfEmpty(ctx, cat)
}

// resolveImage loads the photo for an entry. Failures are logged and the
// recipe is imported without a photo.
func (i *Importer) resolveImage(ctx context.Context, e Entry, result *Result) *domain.Image {
	if e.ImageName == "" {
		return nil
	}
	if i.images == nil {
		i.logger.Warn("no asset directory configured, importing recipe without image",
			"recipe", e.Title,
			"image", e.ImageName,
		)
		result.MissingImages = append(result.MissingImages, e.ImageName)
		return nil
	}

	img, err := i.images.Load(e.ImageName)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, errors.ErrNotFound) {
			level = slog.LevelInfo
		}
		i.logger.Log(ctx, level, "catalogue image unavailable, importing recipe without image",
			"recipe", e.Title,
			"image", e.ImageName,
			"error", err,
		)
		result.MissingImages = append(result.MissingImages, e.ImageName)
		return nil
	}

	result.Images++
	return img
}
