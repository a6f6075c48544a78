package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 100; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_LongInterval(t *testing.T) {
	if got := calculateBackoff(3, time.Minute); got != time.Minute {
		t.Fatalf("calculateBackoff(3, 1m) = %v, want 1m", got)
	}
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestStartPoller_Disabled(t *testing.T) {
	r := &countingRefresher{}
	if done := StartPoller(context.Background(), r, 0, nil); done != nil {
		t.Fatal("StartPoller(0) returned a channel, want nil")
	}
	time.Sleep(20 * time.Millisecond)
	if got := r.calls.Load(); got != 0 {
		t.Fatalf("refresh calls = %d, want 0", got)
	}
}

func TestStartPoller_RefreshesUntilCancelled(t *testing.T) {
	r := &countingRefresher{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartPoller(ctx, r, 5*time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("refresh calls = %d after 2s, want >= 3", r.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not exit after cancel")
	}
}

func TestStartPoller_KeepsPollingOnError(t *testing.T) {
	r := &countingRefresher{err: errors.New("offline")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartPoller(ctx, r, time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("refresh calls = %d after 2s, want >= 2", r.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
}
