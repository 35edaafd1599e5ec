// Package worker consumes tasks from the Redis queue and dispatches them to
// registered handlers.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/queue"
)

// HandlerFunc processes one task. The returned value is stored as the task
// result on success.
type HandlerFunc func(ctx context.Context, task *queue.Task) (any, error)

// pollTimeout bounds each blocking dequeue so shutdown is noticed promptly.
const pollTimeout = 5 * time.Second

// Worker pulls tasks off the queue and runs them. The pool mode controls
// concurrency: "solo" runs tasks strictly one at a time, "prefork" fans out
// to a fixed number of goroutines.
type Worker struct {
	queue       *queue.Client
	handlers    map[string]HandlerFunc
	concurrency int
}

// New creates a worker for the given queue client.
func New(q *queue.Client, cfg config.WorkerConfig) *Worker {
	concurrency := 1
	if cfg.Pool == "prefork" && cfg.Concurrency > 1 {
		concurrency = cfg.Concurrency
	}
	return &Worker{
		queue:       q,
		handlers:    make(map[string]HandlerFunc),
		concurrency: concurrency,
	}
}

// Register binds a task name to its handler. Registering the same name twice
// replaces the earlier handler.
func (w *Worker) Register(name string, fn HandlerFunc) {
	w.handlers[name] = fn
}

// Run consumes tasks until the context is canceled. In-flight tasks are given
// a chance to finish before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("worker started",
		"queue", w.queue.Queue(),
		"concurrency", w.concurrency,
		"tasks", w.taskNames(),
	)

	// Slots limit how many tasks run at once. With concurrency 1 this
	// degenerates to strictly sequential processing.
	slots := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			slog.Info("worker stopped")
			return nil
		case slots <- struct{}{}:
		}

		task, err := w.queue.Dequeue(ctx, pollTimeout)
		if err != nil {
			<-slots
			if ctx.Err() != nil {
				wg.Wait()
				slog.Info("worker stopped")
				return nil
			}
			slog.Error("dequeue failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			<-slots
			continue
		}

		wg.Add(1)
		go func(task *queue.Task) {
			defer wg.Done()
			defer func() { <-slots }()
			w.process(ctx, task)
		}(task)
	}
}

// process runs a single task and records its outcome in the result backend.
func (w *Worker) process(ctx context.Context, task *queue.Task) {
	log := slog.With("task_id", task.ID, "task", task.Name)

	if err := w.queue.SetStarted(ctx, task.ID); err != nil {
		log.Error("failed to mark task started", "error", err)
	}

	handler, ok := w.handlers[task.Name]
	if !ok {
		err := fmt.Errorf("no handler registered for task %q", task.Name)
		log.Error("unknown task", "error", err)
		if serr := w.queue.SetFailure(ctx, task.ID, err); serr != nil {
			log.Error("failed to record task failure", "error", serr)
		}
		return
	}

	start := time.Now()
	result, err := handler(ctx, task)
	if err != nil {
		log.Error("task failed", "error", err, "duration", time.Since(start))
		if serr := w.queue.SetFailure(ctx, task.ID, err); serr != nil {
			log.Error("failed to record task failure", "error", serr)
		}
		return
	}

	log.Info("task completed", "duration", time.Since(start))
	if serr := w.queue.SetSuccess(ctx, task.ID, result); serr != nil {
		log.Error("failed to record task result", "error", serr)
	}
}

func (w *Worker) taskNames() []string {
	names := make([]string, 0, len(w.handlers))
	for name := range w.handlers {
		names = append(names, name)
	}
	return names
}
