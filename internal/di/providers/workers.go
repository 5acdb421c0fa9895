package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// SessionCleanupJob runs periodic expired-session cleanup.
type SessionCleanupJob struct {
	stop func()
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.stop()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*slog.Logger](i)

	// Sweep once at startup so a long-stopped server doesn't carry stale rows.
	if count, err := sessions.DeleteExpired(context.Background()); err != nil {
		log.Warn("Initial session cleanup failed", "error", err)
	} else if count > 0 {
		log.Info("Initial session cleanup completed", "deleted", count)
	}

	stop := sessions.StartJanitor(cfg.Session.CleanupInterval)
	log.Info("Session cleanup job started", "interval", cfg.Session.CleanupInterval)

	return &SessionCleanupJob{stop: stop}, nil
}
