package mapview

import "time"

// FrameID identifies a pending animation-frame callback.
type FrameID uint64

// FrameScheduler runs callbacks on the next animation frame of the UI loop.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Timer is a cancellable delayed callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks on the UI loop after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}
