// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// mockWorker tracks how many times Run was called and whether it observed
// context cancellation.
type mockWorker struct {
	runCount  atomic.Int32
	cancelled atomic.Bool
}

func (m *mockWorker) Run(ctx context.Context) {
	m.runCount.Add(1)
	<-ctx.Done()
	m.cancelled.Store(true)
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewWorkers(w1, w2, w3).Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	for i, w := range []*mockWorker{w1, w2, w3} {
		if got := w.runCount.Load(); got != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, got)
		}
		if !w.cancelled.Load() {
			t.Errorf("worker[%d]: expected to observe cancellation", i)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	// Should return immediately with no workers
	NewWorkers().Run(context.Background())
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when the workers field is nil
	ws.Run(context.Background())
}

func TestWorkers_Run_WaitsForAll(t *testing.T) {
	slow := &mockWorker{}
	fast := &mockWorker{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewWorkers(slow, fast).Run(ctx)

	if !slow.cancelled.Load() || !fast.cancelled.Load() {
		t.Error("Run returned before every worker finished")
	}
}
