// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that runs
// multiple workers concurrently and waits for all of them to finish.
package workers

import "context"

// Worker is the interface implemented by any background worker, such as
// the periodic vault sync loop.
//
// Implementations are expected to block until the context is cancelled and
// to return only after their resources are released.
type Worker interface {
	Run(ctx context.Context)
}
