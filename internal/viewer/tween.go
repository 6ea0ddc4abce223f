package viewer

import (
	"math"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
)

// CardTween eases the drawn front card towards the controller's style over
// the style's Transition. A zero Transition snaps at once.
type CardTween struct {
	from    mapview.CardStyle
	to      mapview.CardStyle
	shown   mapview.CardStyle
	elapsed time.Duration
	primed  bool
}

// Step retargets the tween if target changed, advances it by dt and returns
// the style to draw.
func (t *CardTween) Step(target mapview.CardStyle, dt time.Duration) mapview.CardStyle {
	if !t.primed {
		t.primed = true
		t.from, t.to, t.shown = target, target, target
		t.elapsed = target.Transition
		return t.shown
	}
	if target != t.to {
		t.from, t.to = t.shown, target
		t.elapsed = 0
	}
	t.elapsed += dt
	if t.to.Transition <= 0 || t.elapsed >= t.to.Transition {
		t.shown = t.to
		return t.shown
	}
	k := ease(float64(t.elapsed) / float64(t.to.Transition))
	t.shown = mapview.CardStyle{
		OffsetX:    lerp(t.from.OffsetX, t.to.OffsetX, k),
		Rotation:   lerp(t.from.Rotation, t.to.Rotation, k),
		Opacity:    lerp(t.from.Opacity, t.to.Opacity, k),
		Transition: t.to.Transition,
	}
	return t.shown
}

// Reset forgets the drawn style, e.g. when a new gallery opens.
func (t *CardTween) Reset() { *t = CardTween{} }

// OverlayFade eases an overlay's opacity towards 1 while it is shown and
// back to 0 once it is hidden, over Duration.
type OverlayFade struct {
	Duration time.Duration
	alpha    float64
}

// Step advances the fade by dt and returns the opacity to draw with.
func (f *OverlayFade) Step(shown bool, dt time.Duration) float64 {
	target := 0.0
	if shown {
		target = 1
	}
	if f.Duration <= 0 {
		f.alpha = target
		return f.alpha
	}
	step := float64(dt) / float64(f.Duration)
	if f.alpha < target {
		f.alpha = math.Min(target, f.alpha+step)
	} else {
		f.alpha = math.Max(target, f.alpha-step)
	}
	return f.alpha
}

// Reset starts the next fade from transparent.
func (f *OverlayFade) Reset() { f.alpha = 0 }
