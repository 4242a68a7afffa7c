package keepalive

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type healthMock struct {
	calls atomic.Int64
	err   error
}

func (m *healthMock) Health(_ context.Context) error {
	m.calls.Add(1)
	return m.err
}

func TestRun_PingsImmediatelyAndOnEveryTick(t *testing.T) {
	mock := &healthMock{}
	pinger := NewPinger(mock)
	pinger.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pinger.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for mock.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 pings, got %d", mock.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_FailuresDoNotStopThePinger(t *testing.T) {
	mock := &healthMock{err: errors.New("connection refused")}
	pinger := NewPinger(mock)
	pinger.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pinger.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for mock.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("Expected the pinger to keep trying, got %d calls", mock.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
