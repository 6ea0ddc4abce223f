// Package screen draws the viewer with ebiten and feeds it input.
package screen

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/viewer"
)

var (
	colorOcean     = color.RGBA{14, 30, 54, 255}
	colorGrid      = color.RGBA{40, 70, 110, 255}
	colorMarker    = color.RGBA{255, 99, 71, 255}
	colorSelected  = color.RGBA{255, 215, 0, 255}
	colorPanel     = color.RGBA{0, 0, 0, 180}
	colorCard      = color.RGBA{250, 248, 240, 255}
	colorCardBack  = color.RGBA{215, 210, 195, 255}
	colorDim       = color.RGBA{0, 0, 0, 140}
	colorMiniLand  = color.RGBA{30, 60, 40, 255}
	colorMiniView  = color.RGBA{0, 200, 255, 255}
	colorMiniFrame = color.RGBA{255, 255, 255, 200}
)

// Panel sizes in pixels.
const (
	listWidth  = 260
	miniWidth  = 240
	miniHeight = 150
	margin     = 12
)

// Game adapts a viewer.App to ebiten.
type Game struct {
	done   <-chan struct{}
	app    *viewer.App
	width  int
	height int

	card  *ebiten.Image
	mini  *ebiten.Image
	tween viewer.CardTween
	fade  viewer.OverlayFade
	shown *mapview.Gallery
}

// New returns a game drawing app on a width×height screen. The game ends
// when ctx is done.
func New(ctx context.Context, app *viewer.App, width, height int) *Game {
	return &Game{
		done:   ctx.Done(),
		app:    app,
		width:  width,
		height: height,
		card:   ebiten.NewImage(mapview.DefaultCardWidth, mapview.DefaultCardHeight),
		mini:   ebiten.NewImage(miniWidth, miniHeight),
		fade:   viewer.OverlayFade{Duration: mapview.GalleryExitDuration},
	}
}

func (g *Game) tick() time.Duration {
	return time.Second / time.Duration(ebiten.TPS())
}

// Update handles input and advances the viewer by one tick.
func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.app.Key(mapview.KeyEscape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.app.OpenStory()
	}
	for k := ebiten.KeyDigit1; k <= ebiten.KeyDigit9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			g.app.SelectIndex(int(k-ebiten.KeyDigit1) + 1)
		}
	}

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.app.Press(float64(x), float64(y))
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.app.Release()
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.app.Drag(float64(x), float64(y))
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.app.Zoom(wy)
	}

	g.app.Tick(g.tick())
	return nil
}

// Draw renders the globe view.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorOcean)
	p := g.app.Projection()
	sel := g.app.Selection()

	drawGraticule(screen, p, colorGrid)
	g.drawMarkers(screen, p, sel.SelectedID)
	g.drawLocations(screen)
	g.drawMiniMap(screen)

	if sel.PopupVisible {
		drawPopup(screen, sel, g.width)
	}
	if sel.GalleryVisible {
		g.drawGallery(screen, sel)
	} else {
		g.shown = nil
	}
	g.drawStatus(screen)
}

// Layout keeps the configured logical size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func drawGraticule(dst *ebiten.Image, p viewer.Projection, clr color.Color) {
	w, h := float32(p.Width), float32(p.Height)
	for lng := -180.0; lng < 180; lng += 30 {
		x, _ := p.Project(mapview.LatLng{Lng: lng})
		vector.StrokeLine(dst, float32(x), 0, float32(x), h, 1, clr, false)
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		_, y := p.Project(mapview.LatLng{Lat: lat, Lng: p.Center.Lng})
		vector.StrokeLine(dst, 0, float32(y), w, float32(y), 1, clr, false)
	}
}

func (g *Game) drawMarkers(dst *ebiten.Image, p viewer.Projection, selected string) {
	for _, m := range g.app.Markers() {
		x, y := p.Project(m.Position.LatLng())
		if !p.Visible(x, y, 20) {
			continue
		}
		clr := colorMarker
		r := float32(6)
		if m.ID == selected {
			clr, r = colorSelected, 9
		}
		vector.DrawFilledCircle(dst, float32(x), float32(y), r, clr, true)
		vector.StrokeCircle(dst, float32(x), float32(y), r, 1.5, color.White, true)
		if m.ID == selected || p.Range <= mapview.DefaultRange {
			ebitenutil.DebugPrintAt(dst, m.Title, int(x)+10, int(y)-8)
		}
	}
}

func (g *Game) drawLocations(dst *ebiten.Image) {
	entries := g.app.Locations()
	if len(entries) == 0 {
		return
	}
	h := float32(24 + 16*len(entries))
	vector.DrawFilledRect(dst, margin, margin, listWidth, h, colorPanel, false)
	ebitenutil.DebugPrintAt(dst, "Travels (press 1-9)", margin+8, margin+4)
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s  %d km", e.Index, e.Title, e.DistanceKm)
		ebitenutil.DebugPrintAt(dst, line, margin+8, margin+22+16*i)
	}
}

func drawPopup(dst *ebiten.Image, sel mapview.SelectionView, width int) {
	d := sel.Detail
	const w, h = 320, 110
	x := float32(width - w - margin)
	vector.DrawFilledRect(dst, x, margin, w, h, colorPanel, false)
	lines := []string{
		d.Title,
		fmt.Sprintf("%s, %s", d.Location.City, d.Location.Country),
		d.VisitDate,
		fmt.Sprintf("%d media", len(d.Media)),
		"Enter: full story   Esc: close",
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(dst, l, int(x)+10, margin+8+18*i)
	}
}

// fadeColor scales the opacity of c by alpha.
func fadeColor(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * alpha)}
}

func (g *Game) drawGallery(dst *ebiten.Image, sel mapview.SelectionView) {
	gal := sel.Gallery
	if g.shown != gal {
		g.shown = gal
		g.tween.Reset()
		g.fade.Reset()
	}
	alpha := g.fade.Step(sel.GalleryShown, g.tick())
	if alpha <= 0 {
		return
	}
	vector.DrawFilledRect(dst, 0, 0, float32(g.width), float32(g.height), fadeColor(colorDim, alpha), false)

	cards := gal.Cards()
	x0, y0, x1, y1 := g.app.FrontCardRect(gal)
	cw, ch := x1-x0, y1-y0
	cx, cy := x0+cw/2, y0+ch/2

	for i := min(len(cards), 3) - 1; i >= 1; i-- {
		off := float32(8 * i)
		vector.DrawFilledRect(dst, float32(x0)+off, float32(y0)+off, float32(cw), float32(ch), fadeColor(colorCardBack, alpha), false)
	}

	style := g.tween.Step(gal.Swipe().FrontStyle(), g.tick())
	if len(cards) > 0 && style.Opacity > 0 {
		g.card.Fill(colorCard)
		vector.StrokeRect(g.card, 1, 1, float32(mapview.DefaultCardWidth)-2, float32(mapview.DefaultCardHeight)-2, 2, colorCardBack, false)
		ebitenutil.DebugPrintAt(g.card, cards[0].Label(), 16, mapview.DefaultCardHeight-40)
		ebitenutil.DebugPrintAt(g.card, cards[0].ImageURL, 16, 16)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(mapview.DefaultCardWidth)/2, -float64(mapview.DefaultCardHeight)/2)
		op.GeoM.Scale(cw/mapview.DefaultCardWidth, ch/mapview.DefaultCardHeight)
		op.GeoM.Rotate(style.Rotation * math.Pi / 180)
		op.GeoM.Translate(cx+style.OffsetX, cy)
		op.ColorScale.ScaleAlpha(float32(math.Min(1, style.Opacity) * alpha))
		dst.DrawImage(g.card, op)
	}

	if alpha >= 0.5 {
		ebitenutil.DebugPrintAt(dst, gal.Summary(), int(x0), int(y1)+16)
		ebitenutil.DebugPrintAt(dst, "Drag the card to swipe   Click outside or Esc: close   Enter: full story", int(x0), int(y1)+32)
	}
}

func (g *Game) drawMiniMap(dst *ebiten.Image) {
	mini, center, cam, heading := g.app.MiniMap()
	p := mini.Projection(miniWidth, miniHeight)

	g.mini.Fill(colorMiniLand)
	drawGraticule(g.mini, p, colorGrid)

	cx, cy := p.Project(center.LatLng())
	px, py := p.Project(cam.LatLng())
	vector.StrokeLine(g.mini, float32(px), float32(py), float32(cx), float32(cy), 1, colorMiniView, true)
	vector.DrawFilledCircle(g.mini, float32(cx), float32(cy), 3, colorSelected, true)
	vector.DrawFilledCircle(g.mini, float32(px), float32(py), 4, colorMiniView, true)
	rad := heading * math.Pi / 180
	vector.StrokeLine(g.mini, float32(px), float32(py),
		float32(px+10*math.Sin(rad)), float32(py-10*math.Cos(rad)), 2, colorMiniView, true)
	vector.StrokeRect(g.mini, 0, 0, miniWidth, miniHeight, 1, colorMiniFrame, false)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.width-miniWidth-margin), float64(g.height-miniHeight-margin))
	dst.DrawImage(g.mini, op)
}

func (g *Game) drawStatus(dst *ebiten.Image) {
	cam := g.app.Camera()
	status := fmt.Sprintf("%s | %.2f, %.2f | range %.0f km | tilt %.0f",
		g.app.Route(), cam.Center.Lat, cam.Center.Lng, cam.Range/1000, cam.Tilt)
	if g.app.Flying() {
		status += " | flying"
	}
	if err := g.app.LoadError(); err != nil {
		status += " | " + err.Error()
	}
	ebitenutil.DebugPrintAt(dst, status, margin, g.height-margin-16)
}
