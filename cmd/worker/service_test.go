package main

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type funcRunner func(ctx context.Context) error

func (f funcRunner) Run(ctx context.Context) error { return f(ctx) }

func blockUntilDone(stopped *atomic.Int32) funcRunner {
	return func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return ctx.Err()
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard})
}

func TestNewServiceRequiresConsumers(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)

	_, err = NewService(ServiceParams{
		Logger:    testLogger(),
		Consumers: map[string]runner{"sb-notifications": nil},
	})
	require.Error(t, err)
}

func TestServiceRunFailsOnUnhealthyDependency(t *testing.T) {
	var started atomic.Int32
	svc, err := NewService(ServiceParams{
		Logger:       testLogger(),
		Dependencies: map[string]pinger{"redis": stubPinger{err: errors.New("refused")}},
		Consumers: map[string]runner{
			"sb-notifications": funcRunner(func(context.Context) error {
				started.Add(1)
				return nil
			}),
		},
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.ErrorContains(t, err, "redis ping failed")
	require.Zero(t, started.Load())
}

func TestServiceRunStopsAllConsumersWhenOneFails(t *testing.T) {
	var stopped atomic.Int32
	svc, err := NewService(ServiceParams{
		Logger:       testLogger(),
		Dependencies: map[string]pinger{"database": stubPinger{}},
		Consumers: map[string]runner{
			"sb-notifications":      blockUntilDone(&stopped),
			"sb-plan-notifications": funcRunner(func(context.Context) error { return errors.New("subscription deleted") }),
		},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.Run(context.Background()) }()

	select {
	case err := <-done:
		require.ErrorContains(t, err, "sb-plan-notifications: subscription deleted")
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after consumer failure")
	}
	require.Equal(t, int32(1), stopped.Load())
}

func TestServiceRunReturnsCanceledOnShutdown(t *testing.T) {
	var stopped atomic.Int32
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Consumers: map[string]runner{
			"sb-notifications":      blockUntilDone(&stopped),
			"sb-plan-notifications": blockUntilDone(&stopped),
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(2), stopped.Load())
}
