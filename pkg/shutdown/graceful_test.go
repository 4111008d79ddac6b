package shutdown_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useraccounts/pkg/shutdown"
)

func TestWaitExecutesHooksOnSignal(t *testing.T) {
	hook1Called := make(chan struct{})
	hook2Called := make(chan struct{})

	go shutdown.Wait(context.Background(), time.Second,
		func(context.Context) error { close(hook1Called); return nil },
		func(context.Context) error { close(hook2Called); return errors.New("ignored") },
	)

	time.Sleep(100 * time.Millisecond)

	process, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, process.Signal(syscall.SIGTERM))

	select {
	case <-hook1Called:
	case <-time.After(2 * time.Second):
		t.Error("hook 1 was not called")
	}

	select {
	case <-hook2Called:
	case <-time.After(2 * time.Second):
		t.Error("hook 2 was not called")
	}
}

func TestWaitReturnsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var called atomic.Bool

	done := make(chan struct{})
	go func() {
		shutdown.Wait(ctx, time.Second, func(context.Context) error {
			called.Store(true)
			return nil
		})
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
	assert.True(t, called.Load())
}

func TestRunRespectsTimeout(t *testing.T) {
	var completed atomic.Bool

	slowHook := func(ctx context.Context) error {
		select {
		case <-time.After(2 * time.Second):
			completed.Store(true)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	start := time.Now()
	shutdown.Run(context.Background(), 200*time.Millisecond, slowHook)

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, completed.Load())
}

func TestStackClosesInReverseOrder(t *testing.T) {
	var (
		stack shutdown.Stack
		order []string
	)
	errCache := errors.New("cache close failed")
	errStore := errors.New("store close failed")

	stack.Push(func(context.Context) error { order = append(order, "store"); return errStore })
	stack.Push(func(context.Context) error { order = append(order, "cache"); return errCache })
	stack.Push(func(context.Context) error { order = append(order, "http"); return nil })

	err := stack.Close(context.Background())

	assert.Equal(t, []string{"http", "cache", "store"}, order)
	require.ErrorIs(t, err, errCache)
	require.ErrorIs(t, err, errStore)
}

func TestStackCloseRunsHooksOnce(t *testing.T) {
	var (
		stack shutdown.Stack
		calls atomic.Int32
	)
	stack.Push(func(context.Context) error { calls.Add(1); return nil })

	require.NoError(t, stack.Close(context.Background()))
	require.NoError(t, stack.Close(context.Background()))

	assert.Equal(t, int32(1), calls.Load())
}

func TestEmptyStackClose(t *testing.T) {
	var stack shutdown.Stack
	assert.NoError(t, stack.Close(context.Background()))
}
