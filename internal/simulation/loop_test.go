package simulation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsAtLeastTargetTicks(t *testing.T) {
	var ticks int32
	monitor := NewTickMonitor()
	loop := NewLoop(60, func(time.Duration) bool {
		atomic.AddInt32(&ticks, 1)
		return true
	}, WithMonitor(monitor))
	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	time.Sleep(55 * time.Millisecond)
	cancel()
	loop.Stop()
	if atomic.LoadInt32(&ticks) == 0 {
		t.Fatalf("expected loop to tick at least once")
	}
	if monitor.Snapshot().Samples != int(atomic.LoadInt32(&ticks)) {
		t.Fatalf("expected one monitor sample per tick")
	}
}

func TestLoopStopsWhenStepDeclines(t *testing.T) {
	var ticks int32
	loop := NewLoop(200, func(time.Duration) bool {
		return atomic.AddInt32(&ticks, 1) < 3
	})
	loop.Start(context.Background())
	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the loop to stop on its own")
	}
	if got := atomic.LoadInt32(&ticks); got != 3 {
		t.Fatalf("expected exactly three steps, got %d", got)
	}
}

func TestLoopStepDuration(t *testing.T) {
	loop := NewLoop(120, nil)
	step := loop.StepDuration()
	expected := time.Second / 120
	if step != expected {
		t.Fatalf("unexpected step duration %v", step)
	}
}
