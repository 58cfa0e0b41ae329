// internal/persist/worker_test.go
package persist

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestWorkerExecutesSubmittedTasks(t *testing.T) {
	w := NewWorker(discardLogger(), 2, 16)

	var ran int64
	for i := 0; i < 10; i++ {
		ok := w.Submit(Task{
			Op: "test",
			ID: "x",
			Fn: func(ctx context.Context) error {
				atomic.AddInt64(&ran, 1)
				return nil
			},
		})
		assert.True(t, ok)
	}
	w.Close()
	assert.Equal(t, int64(10), atomic.LoadInt64(&ran))
}

func TestWorkerSwallowsTaskFailures(t *testing.T) {
	w := NewWorker(discardLogger(), 1, 16)

	var after int64
	w.Submit(Task{Op: "fail", ID: "x", Fn: func(ctx context.Context) error {
		return errors.New("durable store down")
	}})
	w.Submit(Task{Op: "ok", ID: "x", Fn: func(ctx context.Context) error {
		atomic.AddInt64(&after, 1)
		return nil
	}})
	w.Close()

	// a failed task never stops the worker or surfaces to the submitter
	assert.Equal(t, int64(1), atomic.LoadInt64(&after))
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	w := NewWorker(discardLogger(), 1, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	// occupy the single worker
	w.Submit(Task{Op: "block", ID: "x", Fn: func(ctx context.Context) error {
		close(started)
		<-block
		return nil
	}})
	<-started
	// fill the queue
	filled := w.Submit(Task{Op: "queued", ID: "x", Fn: func(ctx context.Context) error { return nil }})
	// this one must be dropped, not block the caller
	dropped := w.Submit(Task{Op: "dropped", ID: "x", Fn: func(ctx context.Context) error { return nil }})

	assert.True(t, filled)
	assert.False(t, dropped)

	close(block)
	w.Close()
}
