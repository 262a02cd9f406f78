// Package queue carries storefront notifications ("New order placed: …",
// "New product added: …") from request handlers to a background worker.
//
//	q := queue.New(queue.NewMemoryDriver())
//	_ = q.Publish(ctx, queue.KindOrderPlaced, "New order placed: o1 by customer c1")
//	q.Work(ctx, 2, handler) // blocks until ctx is cancelled
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const (
	KindOrderPlaced  = "order.placed"
	KindProductAdded = "product.added"
)

// Message is one queued notification.
type Message struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Body       string    `json:"body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is available. A nil payload with a nil
	// error means the driver timed out with nothing ready.
	Pop(ctx context.Context) ([]byte, error)
	Len(ctx context.Context) (int64, error)
}

// Handler processes one message. A non-nil error triggers a retry.
type Handler func(ctx context.Context, m Message) error

// Queue publishes and consumes messages over a Driver.
type Queue struct {
	driver   Driver
	failures FailureStore
	maxRetry int
	backoff  func(attempt int) time.Duration
}

type Option func(*Queue)

// WithMaxRetry sets how many times a failing message is attempted. Every
// message is attempted at least once.
func WithMaxRetry(n int) Option { return func(q *Queue) { q.maxRetry = max(n, 1) } }

// WithBackoff replaces the linear one-second-per-attempt backoff.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(q *Queue) { q.backoff = f }
}

// WithFailureStore persists messages that exhaust their retries.
func WithFailureStore(s FailureStore) Option { return func(q *Queue) { q.failures = s } }

func New(d Driver, opts ...Option) *Queue {
	q := &Queue{
		driver:   d,
		failures: NewMemoryFailures(),
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Publish enqueues body under kind.
func (q *Queue) Publish(ctx context.Context, kind, body string) error {
	raw, err := json.Marshal(Message{
		ID:         uuid.NewString(),
		Kind:       kind,
		Body:       body,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("queue: marshal message: %w", err)
	}
	return q.driver.Push(ctx, raw)
}

// Pending returns the number of messages waiting.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	return q.driver.Len(ctx)
}

// Failures exposes the store of exhausted messages.
func (q *Queue) Failures() FailureStore { return q.failures }

// Work runs n workers until ctx is cancelled and all of them have returned.
func (q *Queue) Work(ctx context.Context, n int, h Handler) {
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx, h)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	wg.Wait()
}

func (q *Queue) work(ctx context.Context, h Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := q.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			if !sleep(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}
		q.process(ctx, raw, h)
	}
}

// Drain processes everything currently queued and returns how many
// messages were handled. Used by tests and one-shot CLI runs.
func (q *Queue) Drain(ctx context.Context, h Handler) (int, error) {
	handled := 0
	for {
		n, err := q.driver.Len(ctx)
		if err != nil {
			return handled, err
		}
		if n == 0 {
			return handled, nil
		}
		raw, err := q.driver.Pop(ctx)
		if err != nil {
			return handled, err
		}
		if raw == nil {
			continue
		}
		q.process(ctx, raw, h)
		handled++
	}
}

func (q *Queue) process(ctx context.Context, raw []byte, h Handler) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		logger.Error("queue: bad message", "error", err)
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= q.maxRetry; attempt++ {
		if lastErr = h(ctx, m); lastErr == nil {
			metrics.RecordQueueJob(m.Kind, "success", start)
			return
		}
		logger.Warn("queue: message failed, retrying",
			"kind", m.Kind, "id", m.ID, "attempt", attempt, "error", lastErr)
		if attempt < q.maxRetry && !sleep(ctx, q.backoff(attempt)) {
			break
		}
	}

	metrics.RecordQueueJob(m.Kind, "failed", start)
	if err := q.failures.Record(ctx, FailedMessage{
		Message:  m,
		Error:    lastErr.Error(),
		Attempts: q.maxRetry,
		FailedAt: time.Now().UTC(),
	}); err != nil {
		logger.Error("queue: record failure", "id", m.ID, "error", err)
	}
	logger.Error("queue: message exhausted retries", "kind", m.Kind, "id", m.ID, "error", lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
