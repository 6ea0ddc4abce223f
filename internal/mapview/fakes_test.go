package mapview_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
)

// --- Manual clock: frames and timers run only when the test says so ---

type manualTimer struct {
	s       *manualScheduler
	id      int
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type manualScheduler struct {
	now    time.Duration
	nextID int
	timers []*manualTimer

	nextFrame mapview.FrameID
	frames    map[mapview.FrameID]func()
	frameIDs  []mapview.FrameID
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{frames: make(map[mapview.FrameID]func())}
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) mapview.Timer {
	s.nextID++
	t := &manualTimer{s: s, id: s.nextID, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) RequestFrame(fn func()) mapview.FrameID {
	s.nextFrame++
	s.frames[s.nextFrame] = fn
	s.frameIDs = append(s.frameIDs, s.nextFrame)
	return s.nextFrame
}

func (s *manualScheduler) CancelFrame(id mapview.FrameID) {
	delete(s.frames, id)
}

func (s *manualScheduler) pendingFrames() int { return len(s.frames) }

// frame runs every frame callback requested so far.
func (s *manualScheduler) frame() {
	ids := s.frameIDs
	s.frameIDs = nil
	for _, id := range ids {
		fn, ok := s.frames[id]
		if !ok {
			continue
		}
		delete(s.frames, id)
		fn()
	}
}

// advance moves the clock forward by d, firing due timers in order.
func (s *manualScheduler) advance(d time.Duration) {
	target := s.now + d
	for {
		var due []*manualTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].id < due[j].id
		})
		t := due[0]
		s.now = t.at
		t.fired = true
		t.fn()
	}
	s.now = target
}

// --- Renderer fakes ---

// instantRenderer completes every transition at once and reports the end
// camera back, like a renderer would.
type instantRenderer struct {
	mu     sync.Mutex
	camera *mapview.Camera
	calls  []mapview.FlyCameraOptions
	failAt int // 1-based call index that fails, 0 never
	err    error
}

func (r *instantRenderer) FlyCameraTo(ctx context.Context, opts mapview.FlyCameraOptions) error {
	r.mu.Lock()
	r.calls = append(r.calls, opts)
	n := len(r.calls)
	r.mu.Unlock()
	if r.failAt == n {
		return r.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.camera != nil {
		r.camera.OnCameraChange(opts.EndCamera)
	}
	return nil
}

func (r *instantRenderer) Calls() []mapview.FlyCameraOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mapview.FlyCameraOptions(nil), r.calls...)
}

// gatedRenderer blocks every transition until release is signalled. When
// camera is set, a released transition moves it to the end camera.
type gatedRenderer struct {
	started chan mapview.FlyCameraOptions
	release chan error
	camera  *mapview.Camera
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{
		started: make(chan mapview.FlyCameraOptions, 8),
		release: make(chan error),
	}
}

func (r *gatedRenderer) FlyCameraTo(ctx context.Context, opts mapview.FlyCameraOptions) error {
	r.started <- opts
	select {
	case err := <-r.release:
		if err == nil && r.camera != nil {
			r.camera.OnCameraChange(opts.EndCamera)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
