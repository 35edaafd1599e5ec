package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
)

const (
	// DefaultQueue is the task list key.
	DefaultQueue = "hackrx:tasks"

	statusKeyPrefix = "hackrx:task:"

	// resultTTL bounds how long finished task state is kept.
	resultTTL = 24 * time.Hour
)

// Client is the broker and result backend for background tasks.
type Client struct {
	rdb   *redis.Client
	queue string
}

// New creates a queue client from the Redis configuration. A redis:// URL
// takes precedence over the addr/password/db triple.
func New(cfg config.RedisConfig, queueName string) (*Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 10 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Client{rdb: rdb, queue: queueName}, nil
}

// NewFromRedis wraps an existing Redis client. Used by tests.
func NewFromRedis(rdb *redis.Client, queueName string) *Client {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Client{rdb: rdb, queue: queueName}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if the broker is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Queue returns the task list key this client operates on.
func (c *Client) Queue() string {
	return c.queue
}

// Enqueue pushes a named task onto the queue and creates its pending status
// record. It returns the task ID.
func (c *Client) Enqueue(ctx context.Context, name string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	task := Task{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}

	envelope, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	if err := c.rdb.HSet(ctx, statusKey(task.ID),
		"state", StatePending,
		"name", name,
	).Err(); err != nil {
		return "", fmt.Errorf("record task status: %w", err)
	}
	if err := c.rdb.Expire(ctx, statusKey(task.ID), resultTTL).Err(); err != nil {
		return "", fmt.Errorf("set status TTL: %w", err)
	}

	if err := c.rdb.LPush(ctx, c.queue, envelope).Err(); err != nil {
		return "", fmt.Errorf("enqueue task: %w", err)
	}

	return task.ID, nil
}

// Dequeue blocks up to timeout for the next task. It returns (nil, nil) when
// the timeout elapses with no work.
func (c *Client) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := c.rdb.BRPop(ctx, timeout, c.queue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}

	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task envelope: %w", err)
	}
	return &task, nil
}

// SetStarted marks a task as picked up by a worker.
func (c *Client) SetStarted(ctx context.Context, taskID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return c.setState(ctx, taskID, map[string]any{
		"state":      StateStarted,
		"started_at": now,
	})
}

// SetSuccess records a successful result.
func (c *Client) SetSuccess(ctx context.Context, taskID string, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return c.setState(ctx, taskID, map[string]any{
		"state":       StateSuccess,
		"result":      string(raw),
		"finished_at": now,
	})
}

// SetFailure records a failed task.
func (c *Client) SetFailure(ctx context.Context, taskID string, taskErr error) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return c.setState(ctx, taskID, map[string]any{
		"state":       StateFailure,
		"error":       taskErr.Error(),
		"finished_at": now,
	})
}

// Status returns the current state of a task. Unknown IDs report PENDING,
// mirroring how the legacy result backend treated unseen task IDs.
func (c *Client) Status(ctx context.Context, taskID string) (*Status, error) {
	fields, err := c.rdb.HGetAll(ctx, statusKey(taskID)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch task status: %w", err)
	}

	status := &Status{TaskID: taskID, State: StatePending}
	if len(fields) == 0 {
		return status, nil
	}

	if state := fields["state"]; state != "" {
		status.State = state
	}
	if result := fields["result"]; result != "" {
		status.Result = json.RawMessage(result)
	}
	status.Error = fields["error"]
	if ts := parseTime(fields["started_at"]); ts != nil {
		status.StartedAt = ts
	}
	if ts := parseTime(fields["finished_at"]); ts != nil {
		status.FinishedAt = ts
	}

	return status, nil
}

func (c *Client) setState(ctx context.Context, taskID string, fields map[string]any) error {
	key := statusKey(taskID)
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := c.rdb.HSet(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return c.rdb.Expire(ctx, key, resultTTL).Err()
}

func statusKey(taskID string) string {
	return statusKeyPrefix + taskID
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
