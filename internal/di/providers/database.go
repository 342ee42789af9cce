package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/logger"
	"github.com/lieblingsgerichte/rezepte/internal/prefs"
	"github.com/lieblingsgerichte/rezepte/internal/store"
	"github.com/lieblingsgerichte/rezepte/internal/store/sqlite"
)

// StoreHandle wraps the entity store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the entity store: durable under the data path, or
// in memory when configured so.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		db  *sqlite.Store
		err error
	)
	if cfg.Data.InMemory {
		db, err = sqlite.OpenInMemory(log.Logger)
	} else {
		if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err = sqlite.Open(cfg.Data.DBPath(), log.Logger)
	}
	if err != nil {
		return nil, err
	}

	db.SetEmitter(store.NewLogEmitter(log.Logger))

	log.Debug("entity store opened", "path", cfg.Data.DBPath(), "in_memory", db.InMemory())

	return &StoreHandle{Store: db}, nil
}

// PrefsHandle wraps the preference store with shutdown capability.
type PrefsHandle struct {
	*prefs.Store
}

// Shutdown implements do.Shutdownable.
func (h *PrefsHandle) Shutdown() error {
	return h.Close()
}

// ProvidePrefs provides the preference store.
func ProvidePrefs(i do.Injector) (*PrefsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		p   *prefs.Store
		err error
	)
	if cfg.Data.InMemory {
		p, err = prefs.OpenInMemory(log.Logger)
	} else {
		p, err = prefs.Open(cfg.Data.PrefsPath(), log.Logger)
	}
	if err != nil {
		return nil, err
	}

	return &PrefsHandle{Store: p}, nil
}
