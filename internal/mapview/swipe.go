package mapview

import (
	"math"
	"time"
)

// SwipeExitDuration is both the card transition duration after release and
// the delay before a committed card is moved to the back of the stack.
const SwipeExitDuration = 300 * time.Millisecond

// Swipe geometry.
const (
	swipeRotationFactor = 0.1  // degrees per pixel of drag
	swipeFadeWidths     = 1.5  // card widths to fade out completely
	swipeOutWidths      = 1.5  // card widths a committed card travels
	swipeOutRotation    = 15.0 // degrees
	swipeThresholdRatio = 3.0  // threshold = width / ratio
)

// SwipeState is the gesture state of a card stack.
type SwipeState int

const (
	SwipeIdle SwipeState = iota
	SwipeDragging
	SwipeCommitting
	SwipeSnappingBack
)

func (s SwipeState) String() string {
	switch s {
	case SwipeIdle:
		return "idle"
	case SwipeDragging:
		return "dragging"
	case SwipeCommitting:
		return "committing"
	case SwipeSnappingBack:
		return "snapping_back"
	default:
		return "unknown"
	}
}

// CardStyle is the visual transform of the front card. Transition is the
// animated transition duration; zero means direct manipulation.
type CardStyle struct {
	OffsetX    float64
	Rotation   float64 // degrees
	Opacity    float64 // may go below zero, renderers treat it as transparent
	Transition time.Duration
}

// RestStyle is the style of a card sitting in the stack.
var RestStyle = CardStyle{Opacity: 1, Transition: 500 * time.Millisecond}

// SwipeResult describes how a drag was resolved.
type SwipeResult struct {
	State     SwipeState // SwipeCommitting or SwipeSnappingBack
	Committed bool
	Direction int // -1 or +1 when committed
	DeltaX    float64
	Style     CardStyle
}

// swipeSession is the state of one drag.
type swipeSession struct {
	active       bool
	startX       float64
	currentX     float64
	paintPending bool
	paintFrame   FrameID
}

// SwipeGestureController turns pointer events on a card stack into front
// card transforms and commit/cancel decisions. It is driven from the UI
// loop and is not safe for concurrent use.
type SwipeGestureController struct {
	cardWidth float64
	order     []int
	frames    FrameScheduler
	timers    Scheduler

	session    swipeSession
	front      CardStyle
	rotateTime Timer

	// OnStyle, if set, receives every style applied to the front card.
	OnStyle func(CardStyle)
	// OnOrderChange, if set, receives the card order after a committed swipe.
	OnOrderChange func([]int)
}

// NewSwipeGestureController creates a controller for n cards of the given width.
func NewSwipeGestureController(n int, cardWidth float64, frames FrameScheduler, timers Scheduler) *SwipeGestureController {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &SwipeGestureController{
		cardWidth: cardWidth,
		order:     order,
		frames:    frames,
		timers:    timers,
		front:     RestStyle,
	}
}

// Order returns a copy of the current card order, front first.
func (c *SwipeGestureController) Order() []int {
	return append([]int(nil), c.order...)
}

// State returns the gesture state. A committed card stays in
// SwipeCommitting until it has been moved to the back of the stack.
func (c *SwipeGestureController) State() SwipeState {
	switch {
	case c.session.active:
		return SwipeDragging
	case c.rotateTime != nil:
		return SwipeCommitting
	default:
		return SwipeIdle
	}
}

// FrontStyle returns the last style applied to the front card.
func (c *SwipeGestureController) FrontStyle() CardStyle { return c.front }

// Threshold is the drag distance at which a release commits.
func (c *SwipeGestureController) Threshold() float64 {
	return c.cardWidth / swipeThresholdRatio
}

// DragStyle is the front card style for a drag of dx pixels.
func (c *SwipeGestureController) DragStyle(dx float64) CardStyle {
	return CardStyle{
		OffsetX:  dx,
		Rotation: dx * swipeRotationFactor,
		Opacity:  1 - math.Abs(dx)/(c.cardWidth*swipeFadeWidths),
	}
}

// PointerDown starts a drag at x. It is ignored while a drag is active and
// while a committed card is still leaving, so the order never changes under
// an active drag.
func (c *SwipeGestureController) PointerDown(x float64) {
	if c.session.active || c.rotateTime != nil || len(c.order) == 0 {
		return
	}
	c.cancelPaint()
	c.session = swipeSession{active: true, startX: x, currentX: x}

	style := c.front
	style.Transition = 0
	c.apply(style)
}

// PointerMove records x and coalesces style updates to the next frame.
func (c *SwipeGestureController) PointerMove(x float64) {
	if !c.session.active {
		return
	}
	c.session.currentX = x
	if c.session.paintPending {
		return
	}
	c.session.paintPending = true
	c.session.paintFrame = c.frames.RequestFrame(c.paint)
}

// PointerUp resolves the drag. ok is false if no drag was active.
func (c *SwipeGestureController) PointerUp() (SwipeResult, bool) {
	return c.end()
}

// PointerLeave resolves the drag like PointerUp.
func (c *SwipeGestureController) PointerLeave() (SwipeResult, bool) {
	return c.end()
}

// Dispose cancels the pending paint job and rotation timer.
func (c *SwipeGestureController) Dispose() {
	c.cancelPaint()
	if c.rotateTime != nil {
		c.rotateTime.Stop()
		c.rotateTime = nil
	}
	c.session = swipeSession{}
}

func (c *SwipeGestureController) paint() {
	if !c.session.paintPending {
		return
	}
	c.session.paintPending = false
	c.apply(c.DragStyle(c.session.currentX - c.session.startX))
}

func (c *SwipeGestureController) cancelPaint() {
	if c.session.paintPending {
		c.frames.CancelFrame(c.session.paintFrame)
		c.session.paintPending = false
	}
}

func (c *SwipeGestureController) end() (SwipeResult, bool) {
	if !c.session.active {
		return SwipeResult{}, false
	}
	c.cancelPaint()
	dx := c.session.currentX - c.session.startX
	c.session = swipeSession{}

	var res SwipeResult
	res.DeltaX = dx
	if math.Abs(dx) >= c.Threshold() {
		dir := 1
		if dx < 0 {
			dir = -1
		}
		res.State = SwipeCommitting
		res.Committed = true
		res.Direction = dir
		res.Style = CardStyle{
			OffsetX:    float64(dir) * c.cardWidth * swipeOutWidths,
			Rotation:   float64(dir) * swipeOutRotation,
			Opacity:    0,
			Transition: SwipeExitDuration,
		}
		c.apply(res.Style)
		c.rotateTime = c.timers.AfterFunc(SwipeExitDuration, c.rotate)
	} else {
		res.State = SwipeSnappingBack
		res.Style = CardStyle{Opacity: 1, Transition: SwipeExitDuration}
		c.apply(res.Style)
	}
	return res, true
}

// rotate moves the front card to the back once the exit animation is over.
func (c *SwipeGestureController) rotate() {
	c.rotateTime = nil
	if n := len(c.order); n > 1 {
		first := c.order[0]
		copy(c.order, c.order[1:])
		c.order[n-1] = first
	}
	if c.OnOrderChange != nil {
		c.OnOrderChange(c.Order())
	}
	c.apply(RestStyle)
}

func (c *SwipeGestureController) apply(s CardStyle) {
	c.front = s
	if c.OnStyle != nil {
		c.OnStyle(s)
	}
}
