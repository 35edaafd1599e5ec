package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/queue"
)

func newTestQueue(t *testing.T) *queue.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return queue.NewFromRedis(rdb, "test:tasks")
}

// waitForDone polls the result backend until the task reaches a terminal
// state or the deadline passes.
func waitForDone(t *testing.T, q *queue.Client, taskID string) *queue.Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := q.Status(context.Background(), taskID)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.Done() {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return nil
}

func runWorker(t *testing.T, w *Worker) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("worker did not stop after cancel")
		}
	})
	return cancel
}

func TestWorker_RunsHandler(t *testing.T) {
	q := newTestQueue(t)
	w := New(q, config.WorkerConfig{Pool: "solo"})

	var mu sync.Mutex
	var seen []string
	w.Register("echo", func(ctx context.Context, task *queue.Task) (any, error) {
		var payload map[string]string
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return nil, err
		}
		mu.Lock()
		seen = append(seen, payload["msg"])
		mu.Unlock()
		return map[string]string{"echoed": payload["msg"]}, nil
	})
	runWorker(t, w)

	id, err := q.Enqueue(context.Background(), "echo", map[string]string{"msg": "hello"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	status := waitForDone(t, q, id)
	if status.State != queue.StateSuccess {
		t.Fatalf("state = %q, want SUCCESS (error: %s)", status.State, status.Error)
	}

	var result map[string]string
	if err := json.Unmarshal(status.Result, &result); err != nil {
		t.Fatalf("result decode failed: %v", err)
	}
	if result["echoed"] != "hello" {
		t.Errorf("result = %v", result)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "hello" {
		t.Errorf("handler saw %v", seen)
	}
}

func TestWorker_HandlerError(t *testing.T) {
	q := newTestQueue(t)
	w := New(q, config.WorkerConfig{Pool: "solo"})
	w.Register("broken", func(ctx context.Context, task *queue.Task) (any, error) {
		return nil, errors.New("unsupported file format")
	})
	runWorker(t, w)

	id, err := q.Enqueue(context.Background(), "broken", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	status := waitForDone(t, q, id)
	if status.State != queue.StateFailure {
		t.Fatalf("state = %q, want FAILURE", status.State)
	}
	if status.Error != "unsupported file format" {
		t.Errorf("error = %q", status.Error)
	}
}

func TestWorker_UnknownTask(t *testing.T) {
	q := newTestQueue(t)
	w := New(q, config.WorkerConfig{Pool: "solo"})
	w.Register("known", func(ctx context.Context, task *queue.Task) (any, error) {
		return nil, nil
	})
	runWorker(t, w)

	id, err := q.Enqueue(context.Background(), "mystery", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	status := waitForDone(t, q, id)
	if status.State != queue.StateFailure {
		t.Fatalf("state = %q, want FAILURE", status.State)
	}
	if !strings.Contains(status.Error, "no handler registered") {
		t.Errorf("error = %q, want mention of missing handler", status.Error)
	}
}

func TestWorker_SoloIsSequential(t *testing.T) {
	q := newTestQueue(t)
	w := New(q, config.WorkerConfig{Pool: "solo"})

	var mu sync.Mutex
	running := 0
	maxRunning := 0
	w.Register("slow", func(ctx context.Context, task *queue.Task) (any, error) {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil, nil
	})
	runWorker(t, w)

	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := q.Enqueue(ctx, "slow", map[string]int{"n": i})
		if err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		waitForDone(t, q, id)
	}

	mu.Lock()
	defer mu.Unlock()
	if maxRunning != 1 {
		t.Errorf("max concurrent tasks = %d, want 1", maxRunning)
	}
}

func TestWorker_PreforkRunsConcurrently(t *testing.T) {
	q := newTestQueue(t)
	w := New(q, config.WorkerConfig{Pool: "prefork", Concurrency: 3})

	// Each handler announces arrival and then blocks until released. Both
	// arrivals can only be observed if the tasks run at the same time.
	arrived := make(chan struct{}, 2)
	proceed := make(chan struct{})
	w.Register("meet", func(ctx context.Context, task *queue.Task) (any, error) {
		arrived <- struct{}{}
		select {
		case <-proceed:
			return nil, nil
		case <-time.After(3 * time.Second):
			return nil, fmt.Errorf("no concurrent partner arrived")
		}
	})
	runWorker(t, w)

	ctx := context.Background()
	id1, err := q.Enqueue(ctx, "meet", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	id2, err := q.Enqueue(ctx, "meet", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(3 * time.Second):
			t.Fatal("tasks did not run concurrently")
		}
	}
	close(proceed)

	s1 := waitForDone(t, q, id1)
	s2 := waitForDone(t, q, id2)
	if s1.State != queue.StateSuccess || s2.State != queue.StateSuccess {
		t.Errorf("states = %q, %q, want both SUCCESS", s1.State, s2.State)
	}
}

func TestNew_ConcurrencyModes(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.WorkerConfig
		want int
	}{
		{"solo", config.WorkerConfig{Pool: "solo", Concurrency: 8}, 1},
		{"prefork", config.WorkerConfig{Pool: "prefork", Concurrency: 4}, 4},
		{"prefork without concurrency", config.WorkerConfig{Pool: "prefork"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(newTestQueue(t), tt.cfg)
			if w.concurrency != tt.want {
				t.Errorf("concurrency = %d, want %d", w.concurrency, tt.want)
			}
		})
	}
}
