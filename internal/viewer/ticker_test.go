package viewer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/viewer"
)

func TestTicker_FramesRunOnNextAdvance(t *testing.T) {
	tk := viewer.NewTicker()
	var ran []string
	tk.RequestFrame(func() {
		ran = append(ran, "a")
		tk.RequestFrame(func() { ran = append(ran, "c") })
	})
	id := tk.RequestFrame(func() { ran = append(ran, "b") })
	tk.CancelFrame(id)

	tk.Advance(16 * time.Millisecond)
	if len(ran) != 1 || ran[0] != "a" {
		t.Fatalf("expected only frame a, got %v", ran)
	}
	tk.Advance(16 * time.Millisecond)
	if len(ran) != 2 || ran[1] != "c" {
		t.Fatalf("frame requested during a frame should run next tick, got %v", ran)
	}
}

func TestTicker_TimersFireInDeadlineOrder(t *testing.T) {
	tk := viewer.NewTicker()
	var ran []int
	tk.AfterFunc(30*time.Millisecond, func() { ran = append(ran, 30) })
	tk.AfterFunc(10*time.Millisecond, func() { ran = append(ran, 10) })
	stopped := tk.AfterFunc(20*time.Millisecond, func() { ran = append(ran, 20) })
	if !stopped.Stop() {
		t.Fatal("pending timer should stop")
	}
	if stopped.Stop() {
		t.Error("second Stop should report false")
	}

	tk.Advance(5 * time.Millisecond)
	if len(ran) != 0 {
		t.Fatalf("nothing is due yet, got %v", ran)
	}
	tk.Advance(50 * time.Millisecond)
	if len(ran) != 2 || ran[0] != 10 || ran[1] != 30 {
		t.Fatalf("expected [10 30], got %v", ran)
	}
	if tk.Now() != 55*time.Millisecond {
		t.Errorf("unexpected clock %v", tk.Now())
	}
	if f, tm := tk.Pending(); f != 0 || tm != 0 {
		t.Errorf("expected nothing pending, got %d frames %d timers", f, tm)
	}
}

func TestTicker_TimerScheduledByTimer(t *testing.T) {
	tk := viewer.NewTicker()
	fired := false
	tk.AfterFunc(10*time.Millisecond, func() {
		tk.AfterFunc(0, func() { fired = true })
	})
	tk.Advance(10 * time.Millisecond)
	if !fired {
		t.Error("a zero-delay timer scheduled by a timer should fire in the same advance")
	}
}

func TestTicker_ConcurrentScheduling(t *testing.T) {
	tk := viewer.NewTicker()
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk.AfterFunc(time.Millisecond, func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
			tk.RequestFrame(func() {})
		}()
	}
	wg.Wait()
	tk.Advance(time.Millisecond)
	if count != 20 {
		t.Errorf("expected 20 timers fired, got %d", count)
	}
}
