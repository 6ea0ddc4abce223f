package mapview

import (
	"strconv"
	"time"
)

// Gallery animation timings. The exit shares the swipe exit duration.
const (
	GalleryEntranceDelay = 10 * time.Millisecond
	GalleryExitDuration  = SwipeExitDuration
)

// Default card size in pixels.
const (
	DefaultCardWidth  = 320
	DefaultCardHeight = 480
)

// Key is a keyboard key the gallery reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

// Card is one photo of the gallery card stack.
type Card struct {
	ID       string
	ImageURL string
	Title    string
	Caption  string
}

// Label is the text shown on the card: the caption, or the title if empty.
func (c Card) Label() string {
	if c.Caption != "" {
		return c.Caption
	}
	return c.Title
}

// GalleryOptions configures a Gallery.
type GalleryOptions struct {
	CardWidth       float64
	CardHeight      float64
	TravelTitle     string
	OnClose         func()
	OnViewFullStory func()
}

// Gallery is the photo overlay shown over the map: a swipeable card stack
// with entrance and exit animations.
type Gallery struct {
	cards  []Card
	opts   GalleryOptions
	swipe  *SwipeGestureController
	timers Scheduler

	visible  bool
	closing  bool
	closed   bool
	entrance Timer
	exit     Timer
}

// NewGallery opens a gallery over cards. The overlay becomes visible after
// GalleryEntranceDelay.
func NewGallery(cards []Card, opts GalleryOptions, frames FrameScheduler, timers Scheduler) *Gallery {
	if opts.CardWidth <= 0 {
		opts.CardWidth = DefaultCardWidth
	}
	if opts.CardHeight <= 0 {
		opts.CardHeight = DefaultCardHeight
	}
	g := &Gallery{
		cards:  cards,
		opts:   opts,
		swipe:  NewSwipeGestureController(len(cards), opts.CardWidth, frames, timers),
		timers: timers,
	}
	g.entrance = timers.AfterFunc(GalleryEntranceDelay, func() {
		g.entrance = nil
		if !g.closing {
			g.visible = true
		}
	})
	return g
}

// Swipe returns the card stack controller.
func (g *Gallery) Swipe() *SwipeGestureController { return g.swipe }

// Options returns the gallery options with defaults applied.
func (g *Gallery) Options() GalleryOptions { return g.opts }

// Visible reports whether the overlay is shown (entrance done, not closing).
func (g *Gallery) Visible() bool { return g.visible }

// Closed reports whether the close callback has run.
func (g *Gallery) Closed() bool { return g.closed }

// Len returns the number of cards.
func (g *Gallery) Len() int { return len(g.cards) }

// Cards returns the cards in stacking order, front first.
func (g *Gallery) Cards() []Card {
	out := make([]Card, 0, len(g.cards))
	for _, i := range g.swipe.Order() {
		out = append(out, g.cards[i])
	}
	return out
}

// Summary is the caption under the stack, e.g. "3 photos • Taj Mahal Visit".
func (g *Gallery) Summary() string {
	noun := "photos"
	if len(g.cards) == 1 {
		noun = "photo"
	}
	return strconv.Itoa(len(g.cards)) + " " + noun + " • " + g.opts.TravelTitle
}

// HandleKey reacts to keyboard input. It reports whether the key was used.
func (g *Gallery) HandleKey(k Key) bool {
	if k != KeyEscape {
		return false
	}
	g.Close()
	return true
}

// Close plays the exit animation and then invokes OnClose, whatever the
// drag state. Repeated calls are ignored.
func (g *Gallery) Close() {
	if g.closing {
		return
	}
	g.closing = true
	g.visible = false
	if g.entrance != nil {
		g.entrance.Stop()
		g.entrance = nil
	}
	g.swipe.Dispose()
	g.exit = g.timers.AfterFunc(GalleryExitDuration, func() {
		g.exit = nil
		g.closed = true
		if g.opts.OnClose != nil {
			g.opts.OnClose()
		}
	})
}

// ViewFullStory invokes the "view full story" callback.
func (g *Gallery) ViewFullStory() {
	if g.opts.OnViewFullStory != nil {
		g.opts.OnViewFullStory()
	}
}

// Dispose cancels every pending callback without invoking OnClose.
func (g *Gallery) Dispose() {
	g.swipe.Dispose()
	for _, t := range []Timer{g.entrance, g.exit} {
		if t != nil {
			t.Stop()
		}
	}
	g.entrance, g.exit = nil, nil
}
