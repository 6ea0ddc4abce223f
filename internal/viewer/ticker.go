// Package viewer is the desktop globe viewer: an ebiten game driving the
// mapview controllers against the journal API.
package viewer

import (
	"sort"
	"sync"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
)

// Ticker runs frame callbacks and timers on the UI loop. Advance is called
// once per ebiten tick; RequestFrame and AfterFunc may be called from any
// goroutine.
type Ticker struct {
	mu        sync.Mutex
	now       time.Duration
	nextFrame mapview.FrameID
	frames    map[mapview.FrameID]func()
	order     []mapview.FrameID
	nextTimer uint64
	timers    map[uint64]*tickTimer
}

type tickTimer struct {
	t  *Ticker
	id uint64
	at time.Duration
	fn func()
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (tt *tickTimer) Stop() bool {
	tt.t.mu.Lock()
	defer tt.t.mu.Unlock()
	if _, ok := tt.t.timers[tt.id]; !ok {
		return false
	}
	delete(tt.t.timers, tt.id)
	return true
}

// NewTicker returns a ticker at time zero.
func NewTicker() *Ticker {
	return &Ticker{
		frames: make(map[mapview.FrameID]func()),
		timers: make(map[uint64]*tickTimer),
	}
}

// RequestFrame schedules fn for the next Advance.
func (t *Ticker) RequestFrame(fn func()) mapview.FrameID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextFrame++
	t.frames[t.nextFrame] = fn
	t.order = append(t.order, t.nextFrame)
	return t.nextFrame
}

// CancelFrame drops a pending frame callback.
func (t *Ticker) CancelFrame(id mapview.FrameID) {
	t.mu.Lock()
	delete(t.frames, id)
	t.mu.Unlock()
}

// AfterFunc schedules fn to run on the first Advance at least d from now.
func (t *Ticker) AfterFunc(d time.Duration, fn func()) mapview.Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextTimer++
	tt := &tickTimer{t: t, id: t.nextTimer, at: t.now + d, fn: fn}
	t.timers[tt.id] = tt
	return tt
}

// Now returns the total time advanced so far.
func (t *Ticker) Now() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Pending reports the number of queued frames and timers.
func (t *Ticker) Pending() (frames, timers int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames), len(t.timers)
}

// Advance moves the clock by dt. Frame callbacks requested before the call
// run first, then every timer due by the new time, in deadline order.
// Callbacks run without the lock held and may schedule more work; frames
// they request wait for the next Advance.
func (t *Ticker) Advance(dt time.Duration) {
	t.mu.Lock()
	t.now += dt
	ids := t.order
	t.order = nil
	frames := make([]func(), 0, len(ids))
	for _, id := range ids {
		if fn, ok := t.frames[id]; ok {
			frames = append(frames, fn)
			delete(t.frames, id)
		}
	}
	t.mu.Unlock()

	for _, fn := range frames {
		fn()
	}

	for {
		tt := t.popDue()
		if tt == nil {
			return
		}
		tt.fn()
	}
}

func (t *Ticker) popDue() *tickTimer {
	t.mu.Lock()
	defer t.mu.Unlock()
	var due []*tickTimer
	for _, tt := range t.timers {
		if tt.at <= t.now {
			due = append(due, tt)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].id < due[j].id
	})
	delete(t.timers, due[0].id)
	return due[0]
}
