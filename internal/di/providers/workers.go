package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/logger"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	binder := do.MustInvoke[*service.SessionBinder](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		runSessionCleanup(ctx, binder, log, sessionCleanupInterval)
	}()

	log.Info("Session cleanup job started", "interval", sessionCleanupInterval)

	return job, nil
}

// runSessionCleanup prunes once at startup, then on every tick until ctx ends.
func runSessionCleanup(ctx context.Context, binder *service.SessionBinder, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if count, err := binder.DeleteExpired(ctx); err != nil {
		log.WithError(err).Warn("Initial session cleanup failed")
	} else if count > 0 {
		log.Info("Initial session cleanup completed", "deleted", count)
	}

	for {
		select {
		case <-ticker.C:
			if count, err := binder.DeleteExpired(ctx); err != nil {
				log.WithError(err).Warn("Session cleanup failed")
			} else if count > 0 {
				log.Info("Session cleanup completed", "deleted", count)
			}
		case <-ctx.Done():
			return
		}
	}
}
