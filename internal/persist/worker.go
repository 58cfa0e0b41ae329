// internal/persist/worker.go
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one unit of write-behind work against the durable store.
type Task struct {
	// Op names the durable operation ("upsert_player", "create_match", ...)
	// and ID carries the player or game identity, both purely for log
	// correlation when the task fails.
	Op string
	ID string
	Fn func(ctx context.Context) error
}

// Worker executes write-behind persistence tasks off the protocol path. The
// submitting handler never blocks and never observes a failure: a full queue
// drops the task with an error log, and a failed task is logged and dropped.
// In-memory state stays authoritative either way.
type Worker struct {
	tasks   chan Task
	logger  *logrus.Logger
	timeout time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorker starts n goroutines draining a queue of the given depth.
func NewWorker(logger *logrus.Logger, n, depth int) *Worker {
	if n < 1 {
		n = 1
	}
	if depth < 1 {
		depth = 256
	}
	w := &Worker{
		tasks:   make(chan Task, depth),
		logger:  logger,
		timeout: 10 * time.Second,
	}
	w.wg.Add(n)
	for i := 0; i < n; i++ {
		go w.run()
	}
	return w
}

// Submit queues a task without blocking. Returns false if the queue was full
// and the task was dropped.
func (w *Worker) Submit(t Task) bool {
	select {
	case w.tasks <- t:
		return true
	default:
		w.logger.WithFields(logrus.Fields{
			"op": t.Op,
			"id": t.ID,
		}).Error("persist queue full, dropping write-behind task")
		return false
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	for t := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := t.Fn(ctx)
		cancel()
		if err != nil {
			w.logger.WithFields(logrus.Fields{
				"op":    t.Op,
				"id":    t.ID,
				"error": err,
			}).Error("write-behind persistence failed")
		}
	}
}

// Close stops accepting tasks and waits for queued work to drain.
func (w *Worker) Close() {
	w.stopOnce.Do(func() {
		close(w.tasks)
	})
	w.wg.Wait()
}
