package queue_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoff(int) time.Duration { return 0 }

func TestPublishAndDrain(t *testing.T) {
	ctx := context.Background()
	q := queue.New(queue.NewMemoryDriver(), queue.WithBackoff(noBackoff))

	require.NoError(t, q.Publish(ctx, queue.KindOrderPlaced, "New order placed: o1 by customer c1"))
	require.NoError(t, q.Publish(ctx, queue.KindProductAdded, "New product added: Lamp (ID: p1)"))

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	var got []queue.Message
	n, err := q.Drain(ctx, func(_ context.Context, m queue.Message) error {
		got = append(got, m)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, got, 2)
	assert.Equal(t, queue.KindOrderPlaced, got[0].Kind)
	assert.Equal(t, "New order placed: o1 by customer c1", got[0].Body)
	assert.NotEmpty(t, got[0].ID)
}

func TestExhaustedMessageIsRecorded(t *testing.T) {
	ctx := context.Background()
	q := queue.New(queue.NewMemoryDriver(), queue.WithMaxRetry(2), queue.WithBackoff(noBackoff))
	require.NoError(t, q.Publish(ctx, queue.KindOrderPlaced, "boom"))

	var attempts atomic.Int32
	_, err := q.Drain(ctx, func(context.Context, queue.Message) error {
		attempts.Add(1)
		return errors.New("always fails")
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())

	failed, err := q.Failures().List(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Message.Body)
	assert.Equal(t, "always fails", failed[0].Error)
	assert.Equal(t, 2, failed[0].Attempts)
}

func TestNonPositiveRetryStillAttemptsOnce(t *testing.T) {
	for _, n := range []int{0, -3} {
		ctx := context.Background()
		q := queue.New(queue.NewMemoryDriver(), queue.WithMaxRetry(n), queue.WithBackoff(noBackoff))
		require.NoError(t, q.Publish(ctx, queue.KindProductAdded, "lamp"))

		var attempts atomic.Int32
		_, err := q.Drain(ctx, func(context.Context, queue.Message) error {
			attempts.Add(1)
			return errors.New("down")
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), attempts.Load(), "retry=%d", n)

		failed, err := q.Failures().List(ctx)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "down", failed[0].Error)
		assert.Equal(t, 1, failed[0].Attempts)
	}
}

func TestWorkStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.New(queue.NewMemoryDriver(), queue.WithBackoff(noBackoff))

	var mu sync.Mutex
	var bodies []string
	done := make(chan struct{})
	go func() {
		q.Work(ctx, 2, func(_ context.Context, m queue.Message) error {
			mu.Lock()
			bodies = append(bodies, m.Body)
			mu.Unlock()
			return nil
		})
		close(done)
	}()

	for _, b := range []string{"a", "b", "c"} {
		require.NoError(t, q.Publish(ctx, queue.KindOrderPlaced, b))
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestMemoryDriverRejectsWhenFull(t *testing.T) {
	ctx := context.Background()
	d := queue.NewMemoryDriver()
	for range 1000 {
		require.NoError(t, d.Push(ctx, []byte("x")))
	}
	assert.Error(t, d.Push(ctx, []byte("overflow")))
}

func TestGormFailures(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := queue.NewGormFailures(ctx, db)
	require.NoError(t, err)

	require.NoError(t, store.Record(ctx, queue.FailedMessage{
		Message:  queue.Message{ID: "m1", Kind: queue.KindProductAdded, Body: "New product added: Lamp (ID: p1)"},
		Error:    "smtp down",
		Attempts: 3,
		FailedAt: time.Now().UTC(),
	}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].Message.ID)
	assert.Equal(t, "smtp down", got[0].Error)
}
