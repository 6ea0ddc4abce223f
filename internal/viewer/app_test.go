package viewer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/mapview"
	"github.com/wandering-tales/wandering-tales/internal/viewer"
)

func testTravels() []domain.Travel {
	return []domain.Travel{
		{ID: "taj", Title: "Taj Mahal Visit", VisitDate: "2024-03-15", IsPublished: true,
			Location: domain.Location{Lat: 27.1751, Lng: 78.0421, City: "Agra", Country: "India"}},
		{ID: "goa", Title: "Goa Beaches", VisitDate: "2024-05-01", IsPublished: true,
			Location: domain.Location{Lat: 15.2993, Lng: 74.124, City: "Panaji", Country: "India"}},
		{ID: "varanasi", Title: "Varanasi Ghats", VisitDate: "2024-07-20", IsPublished: true,
			Location: domain.Location{Lat: 25.3176, Lng: 82.9739, City: "Varanasi", Country: "India"}},
	}
}

func testDetails() map[string]*domain.TravelDetail {
	out := map[string]*domain.TravelDetail{}
	for _, t := range testTravels() {
		out[t.ID] = &domain.TravelDetail{Travel: t}
	}
	out["taj"].Media = []domain.MediaItem{
		{ID: "m1", Type: domain.MediaPhoto, Caption: "Sunrise", URL: "https://img.example.com/1.jpg"},
		{ID: "m2", Type: domain.MediaPhoto, OrderIndex: 1, URL: "https://img.example.com/2.jpg"},
	}
	return out
}

type fakeAPI struct {
	mu      sync.Mutex
	travels []domain.Travel
	details map[string]*domain.TravelDetail
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{travels: testTravels(), details: testDetails()}
}

func (f *fakeAPI) Travels(ctx context.Context) ([]domain.Travel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Travel(nil), f.travels...), nil
}

func (f *fakeAPI) TravelByID(ctx context.Context, id string) (*domain.TravelDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details[id], nil
}

func newTestApp(t *testing.T) *viewer.App {
	t.Helper()
	app := viewer.NewApp(viewer.AppConfig{Width: 1280, Height: 800, API: newFakeAPI()})
	if err := app.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	app.Tick(0)
	t.Cleanup(app.Close)
	return app
}

// tickUntil drives the UI loop until cond holds.
func tickUntil(t *testing.T, app *viewer.App, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		app.Tick(250 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

func press(app *viewer.App, pt mapview.LatLng) {
	x, y := app.Projection().Project(pt)
	app.Press(x, y)
	app.Release()
}

func TestApp_RefreshBuildsMarkersAndList(t *testing.T) {
	app := newTestApp(t)
	if got := len(app.Markers()); got != 3 {
		t.Fatalf("expected 3 markers, got %d", got)
	}
	list := app.Locations()
	if len(list) != 3 || list[0].Title != "Taj Mahal Visit" || list[0].Flag != "🇮🇳" {
		t.Errorf("unexpected location list %+v", list)
	}
}

func TestApp_MarkerClickOpensGallery(t *testing.T) {
	app := newTestApp(t)
	press(app, mapview.LatLng{Lat: 27.1751, Lng: 78.0421})

	tickUntil(t, app, func() bool {
		v := app.Selection()
		return v.GalleryVisible && v.Gallery.Visible()
	})
	v := app.Selection()
	if v.SelectedID != "taj" || v.Gallery.Len() != 2 {
		t.Fatalf("unexpected selection %+v", v)
	}
	cam := app.Camera()
	if cam.Range != mapview.ArrivalRange || cam.Tilt != mapview.ArrivalTilt || cam.Center.Lat != 27.1751 {
		t.Errorf("camera should have arrived at taj, got %+v", cam)
	}

	app.Key(mapview.KeyEscape)
	tickUntil(t, app, func() bool { return app.Selection().SelectedID == "" })
	if cam := app.Camera(); cam.Range != mapview.DefaultRange || cam.Tilt != mapview.DefaultTilt {
		t.Errorf("closing the gallery should reset the zoom, got %+v", cam)
	}
}

func TestApp_SwipeThroughGallery(t *testing.T) {
	app := newTestApp(t)
	app.SelectIndex(1)
	tickUntil(t, app, func() bool {
		v := app.Selection()
		return v.GalleryVisible && v.Gallery.Visible()
	})
	g := app.Selection().Gallery

	app.Press(600, 400)
	app.Drag(400, 400)
	app.Tick(16 * time.Millisecond)
	app.Release()
	tickUntil(t, app, func() bool { return g.Swipe().State() == mapview.SwipeIdle })

	if front := g.Cards()[0]; front.ID != "m2" {
		t.Errorf("a committed swipe should bring m2 to the front, got %s", front.ID)
	}
}

func TestApp_PopupAndStoryRoute(t *testing.T) {
	app := newTestApp(t)
	if !app.SelectIndex(2) {
		t.Fatal("entry 2 should exist")
	}
	tickUntil(t, app, func() bool {
		return app.Selection().PopupVisible && app.Camera().Range == mapview.ArrivalRange && !app.Flying()
	})
	if v := app.Selection(); v.SelectedID != "goa" || v.GalleryVisible {
		t.Fatalf("a travel without media shows the popup, got %+v", v)
	}

	app.OpenStory()
	if app.Route() != "/travel/goa" {
		t.Errorf("expected the story route, got %s", app.Route())
	}

	app.Key(mapview.KeyEscape)
	if app.Selection().PopupVisible {
		t.Error("escape should close the popup")
	}
	app.Key(mapview.KeyEscape)
	if app.Route() != viewer.MapPath {
		t.Errorf("escape with nothing selected should go back to the map, got %s", app.Route())
	}
}

func TestApp_PanAndZoom(t *testing.T) {
	app := newTestApp(t)
	before := app.Camera()

	app.Press(100, 700)
	app.Drag(200, 700)
	app.Release()
	after := app.Camera()
	if after.Center.Lng >= before.Center.Lng {
		t.Errorf("dragging right should move the view west, got %v -> %v", before.Center.Lng, after.Center.Lng)
	}
	if app.Selection().SelectedID != "" {
		t.Error("panning must not select anything")
	}

	app.Zoom(1)
	if got := app.Camera().Range; got != before.Range*0.8 {
		t.Errorf("expected range %v, got %v", before.Range*0.8, got)
	}
	for i := 0; i < 100; i++ {
		app.Zoom(1)
	}
	if got := app.Camera().Range; got != viewer.MinRange {
		t.Errorf("zoom should stop at %v, got %v", viewer.MinRange, got)
	}
}

func TestApp_MiniMapFollowsCamera(t *testing.T) {
	app := newTestApp(t)
	mini, center, _, _ := app.MiniMap()
	if center != mapview.InitialCamera.Center {
		t.Errorf("view center should track the camera, got %+v", center)
	}
	tickUntil(t, app, func() bool {
		_, _, ok := mini.Viewport()
		return ok
	})
	_, zoom, _ := mini.Viewport()
	if zoom != mapview.MiniMapZoom(mapview.DefaultRange) {
		t.Errorf("unexpected minimap zoom %d", zoom)
	}
}

func openGallery(t *testing.T, app *viewer.App) *mapview.Gallery {
	t.Helper()
	app.SelectIndex(1)
	tickUntil(t, app, func() bool { return app.Selection().GalleryShown })
	return app.Selection().Gallery
}

func TestApp_BackdropPressClosesGallery(t *testing.T) {
	app := newTestApp(t)
	g := openGallery(t, app)

	app.Press(20, 20)
	if g.Swipe().State() != mapview.SwipeIdle {
		t.Fatal("a press outside the front card must not start a swipe")
	}
	app.Drag(400, 20)
	app.Release()

	tickUntil(t, app, func() bool { return app.Selection().SelectedID == "" })
	if front := g.Cards()[0]; front.ID != "m1" {
		t.Errorf("the card order must not change, got front %s", front.ID)
	}
	if cam := app.Camera(); cam.Range != mapview.DefaultRange {
		t.Errorf("closing from the backdrop should reset the zoom, got %+v", cam)
	}
}

func TestApp_SwipeEndsWhenPointerLeavesCard(t *testing.T) {
	app := newTestApp(t)
	g := openGallery(t, app)

	app.Press(640, 400)
	if g.Swipe().State() != mapview.SwipeDragging {
		t.Fatal("a press on the front card should start a swipe")
	}
	app.Drag(500, 400)
	app.Tick(16 * time.Millisecond)
	if g.Swipe().State() != mapview.SwipeDragging {
		t.Fatal("a horizontal drag keeps the pointer on the card it moves")
	}

	app.Drag(500, 790)
	if g.Swipe().State() != mapview.SwipeCommitting {
		t.Fatalf("leaving the card past the threshold should commit, got %s", g.Swipe().State())
	}
	app.Drag(300, 790)
	app.Release()

	tickUntil(t, app, func() bool { return g.Swipe().State() == mapview.SwipeIdle })
	if front := g.Cards()[0]; front.ID != "m2" {
		t.Errorf("expected m2 in front after the committed swipe, got %s", front.ID)
	}
}

func TestApp_EscapeDuringFlightLandsAtDefaultZoom(t *testing.T) {
	app := newTestApp(t)
	app.SelectIndex(3)
	tickUntil(t, app, func() bool { return app.Selection().PopupVisible && app.Flying() })

	app.Key(mapview.KeyEscape)
	if v := app.Selection(); v.SelectedID != "" || v.PopupVisible {
		t.Fatalf("escape should close the popup, got %+v", v)
	}

	tickUntil(t, app, func() bool {
		cam := app.Camera()
		return !app.Flying() && cam.Center.Lat == 25.3176 && cam.Range == mapview.DefaultRange
	})
	for i := 0; i < 4; i++ {
		app.Tick(250 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	cam := app.Camera()
	if cam.Range != mapview.DefaultRange || cam.Tilt != mapview.DefaultTilt {
		t.Errorf("after the flight lands the zoom must be the default, got range %v tilt %v", cam.Range, cam.Tilt)
	}
	if app.Selection().SelectedID != "" {
		t.Error("nothing should be selected")
	}
}
