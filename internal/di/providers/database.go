package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// StoreHandle wraps the store with Shutdownable for the container.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideStore opens the database and applies the schema.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	s, err := sqlite.Open(cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database ready", "url", cfg.Database.URL)

	return &StoreHandle{Store: s}, nil
}
