package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/store"
)

const defaultSyncInterval = 5 * time.Minute

// clientSyncJob periodically loads the persisted vault state, runs one
// sync attempt, and persists the state the coordinator returned. Failed
// attempts are logged and retried on the next tick; ErrSyncInFlight is
// ignored because a manual sync is already doing the work.
type clientSyncJob struct {
	coordinator SyncCoordinator
	stateRepo   store.LocalStateRepository
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClientSyncJob constructs a stopped ClientSyncJob.
func NewClientSyncJob(coordinator SyncCoordinator, stateRepo store.LocalStateRepository, logger *logger.Logger) ClientSyncJob {
	return &clientSyncJob{
		coordinator: coordinator,
		stateRepo:   stateRepo,
		logger:      logger,
	}
}

// Start implements [ClientSyncJob].
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})

	go j.run(ctx, interval, j.done)

	j.logger.Info().
		Str("func", "clientSyncJob.Start").
		Dur("interval", interval).
		Msg("background sync started")
}

// Stop implements [ClientSyncJob]. Stopping a job that never started is a
// no-op.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (j *clientSyncJob) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.syncOnce(ctx)
		}
	}
}

func (j *clientSyncJob) syncOnce(ctx context.Context) {
	state, err := j.stateRepo.GetState(ctx)
	if err != nil {
		if errors.Is(err, store.ErrLocalStateNotFound) {
			return
		}
		j.logger.Error().Err(err).
			Str("func", "clientSyncJob.syncOnce").
			Msg("loading vault state")
		return
	}

	next, outcome, err := j.coordinator.Attempt(ctx, state)
	if err != nil {
		if errors.Is(err, ErrSyncInFlight) || errors.Is(err, ErrNotAuthenticated) {
			return
		}
		j.logger.Warn().Err(err).
			Str("func", "clientSyncJob.syncOnce").
			Msg("sync attempt failed")
		return
	}
	if outcome == OutcomeOffline || outcome == OutcomeUpToDate {
		return
	}

	if err = j.stateRepo.SaveState(ctx, next); err != nil {
		j.logger.Error().Err(err).
			Str("func", "clientSyncJob.syncOnce").
			Msg("persisting synced state")
		return
	}

	j.logger.Info().
		Str("outcome", string(outcome)).
		Int64("revision", next.Sync.LocalRevision).
		Msg("background sync completed")
}
