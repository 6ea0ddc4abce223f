package viewer_test

import (
	"testing"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/viewer"
)

func TestCardTween(t *testing.T) {
	var tw viewer.CardTween
	if got := tw.Step(mapview.RestStyle, 16*time.Millisecond); got != mapview.RestStyle {
		t.Fatalf("first step should show the target, got %+v", got)
	}

	drag := mapview.CardStyle{OffsetX: 100, Rotation: 10, Opacity: 0.5}
	if got := tw.Step(drag, 16*time.Millisecond); got != drag {
		t.Fatalf("direct manipulation should snap, got %+v", got)
	}

	half := tw.Step(mapview.RestStyle, 250*time.Millisecond)
	if half.OffsetX != 50 || half.Opacity != 0.75 {
		t.Errorf("expected the midpoint of the snap back, got %+v", half)
	}
	if got := tw.Step(mapview.RestStyle, 250*time.Millisecond); got != mapview.RestStyle {
		t.Errorf("expected rest style at the end, got %+v", got)
	}
}

func TestOverlayFade(t *testing.T) {
	f := viewer.OverlayFade{Duration: 200 * time.Millisecond}

	if got := f.Step(false, 50*time.Millisecond); got != 0 {
		t.Fatalf("a hidden overlay stays transparent, got %v", got)
	}
	if got := f.Step(true, 100*time.Millisecond); got != 0.5 {
		t.Errorf("expected half way in, got %v", got)
	}
	if got := f.Step(true, time.Second); got != 1 {
		t.Errorf("expected fully shown, got %v", got)
	}
	if got := f.Step(false, 50*time.Millisecond); got != 0.75 {
		t.Errorf("expected fading out, got %v", got)
	}

	f.Reset()
	if got := f.Step(true, 0); got != 0 {
		t.Errorf("reset should start from transparent, got %v", got)
	}
}
