package client

import (
	"context"
	"time"

	"github.com/ykarpov/go-vault-sync/internal/service"
)

// syncWorker adapts the periodic sync job to the workers contract so the
// agent command can run it alongside future background workers.
type syncWorker struct {
	job      service.ClientSyncJob
	interval time.Duration
}

func (w *syncWorker) Run(ctx context.Context) {
	w.job.Start(ctx, w.interval)
	<-ctx.Done()
	w.job.Stop()
}
