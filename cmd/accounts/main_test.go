package main

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCancelsContextOnListenError(t *testing.T) {
	errListen := errors.New("address already in use")
	ctx, stop := context.WithCancelCause(context.Background())
	defer stop(nil)

	serve(ctx, stop, ErrStartHTTPServer, func() error { return errListen })

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled")
	}
	require.ErrorIs(t, context.Cause(ctx), errListen)
	assert.Contains(t, context.Cause(ctx).Error(), ErrStartHTTPServer)
}

func TestServeKeepsContextOnCleanStop(t *testing.T) {
	ctx, stop := context.WithCancelCause(context.Background())
	defer stop(nil)

	returned := make(chan struct{})
	serve(ctx, stop, ErrStartHTTPServer, func() error {
		defer close(returned)
		return nil
	})

	<-returned
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, context.Cause(ctx))
}

func TestServeHTTPPortInUse(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	ctx, stop := context.WithCancelCause(context.Background())
	defer stop(nil)

	app := fiber.New()
	serve(ctx, stop, ErrStartHTTPServer, func() error {
		return app.Listen(lis.Addr().String(), fiber.ListenConfig{DisableStartupMessage: true})
	})

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.Contains(t, context.Cause(ctx).Error(), ErrStartHTTPServer)
}
