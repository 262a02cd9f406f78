package schedule_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/stretchr/testify/assert"
)

func TestImmediateTaskRunsRepeatedly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := schedule.New(schedule.WithTick(5 * time.Millisecond))
	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Name("reconcile").Immediately().Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	go s.Run(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestWithoutOverlappingSkipsWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := schedule.New(schedule.WithTick(2 * time.Millisecond))
	var concurrent, maxConcurrent atomic.Int32
	release := make(chan struct{})
	s.Every(time.Millisecond).Immediately().WithoutOverlapping().Run(func(context.Context) error {
		n := concurrent.Add(1)
		if n > maxConcurrent.Load() {
			maxConcurrent.Store(n)
		}
		<-release
		concurrent.Add(-1)
		return nil
	})

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	time.Sleep(50 * time.Millisecond)
	close(release)
	cancel()
	<-done

	assert.Equal(t, int32(1), maxConcurrent.Load())
}

func TestDeferredTaskWaitsOneInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	s := schedule.New(schedule.WithTick(5 * time.Millisecond))
	var runs atomic.Int32
	s.Every(time.Hour).Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Run(ctx)

	assert.Zero(t, runs.Load())
	assert.Equal(t, []string{"task-1  [every 1h0m0s]"}, s.List())
}
