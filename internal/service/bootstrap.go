package service

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/lieblingsgerichte/rezepte/internal/catalog"
	"github.com/lieblingsgerichte/rezepte/internal/store/sqlite"
)

// BootstrapResult reports what happened during startup.
type BootstrapResult struct {
	Import *catalog.Result
	// ImportErr is set when the catalogue import failed. The failure does
	// not stop startup; the import is retried on the next start.
	ImportErr error
	SweptTags int
}

// Bootstrapper runs the startup sequence: seed an empty store from the
// catalogue, then drop orphaned tags.
type Bootstrapper struct {
	store         *sqlite.Store
	importer      *catalog.Importer
	fs            afero.Fs
	cataloguePath string
	logger        *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. An empty cataloguePath selects the
// bundled catalogue.
func NewBootstrapper(store *sqlite.Store, importer *catalog.Importer, fsys afero.Fs, cataloguePath string, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:         store,
		importer:      importer,
		fs:            fsys,
		cataloguePath: cataloguePath,
		logger:        logger,
	}
}

// Run performs the startup sequence. Only a failed sweep is returned as an
// error.
func (b *Bootstrapper) Run(ctx context.Context) (*BootstrapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BootstrapResult{}

	imported, err := b.importer.LoadAndImport(ctx, b.fs, b.cataloguePath)
	if err != nil {
		b.logger.Error("catalogue import failed", "error", err)
		result.ImportErr = err
	} else {
		result.Import = imported
	}

	swept, err := b.store.SweepOrphanedTags(ctx)
	if err != nil {
		return result, err
	}
	result.SweptTags = swept

	return result, nil
}
