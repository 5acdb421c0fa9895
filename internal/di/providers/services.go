package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/ratings"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// RatingsClientHandle wraps the optional external ratings client.
// Client is nil when no API key is configured.
type RatingsClientHandle struct {
	Client *ratings.Client
}

// ProvideRatingsClient provides the community ratings client when configured.
func ProvideRatingsClient(i do.Injector) (*RatingsClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.Ratings.Enabled {
		log.Info("Community ratings lookup disabled (no API key)")
		return &RatingsClientHandle{}, nil
	}

	client := ratings.NewClient(cfg.Ratings.BaseURL, cfg.Ratings.APIKey, cfg.Ratings.Timeout, log)
	log.Info("Community ratings lookup enabled",
		"base_url", cfg.Ratings.BaseURL,
		"timeout", cfg.Ratings.Timeout,
	)

	return &RatingsClientHandle{Client: client}, nil
}

// ProvideUserService provides the credential store service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewUserService(storeHandle.Store, log), nil
}

// ProvideSessionService provides the session authenticator.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	users := do.MustInvoke[*service.UserService](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSessionService(storeHandle.Store, users, cfg.Session.TTL, log), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	ratingsHandle := do.MustInvoke[*RatingsClientHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	// A typed nil in the interface would defeat the nil check downstream.
	var stats service.StatsFetcher
	if ratingsHandle.Client != nil {
		stats = ratingsHandle.Client
	}

	return service.NewReviewService(storeHandle.Store, catalog, stats, log), nil
}
