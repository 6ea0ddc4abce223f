package viewer

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/mapview"
)

// TravelAPI is what the viewer reads from the journal API.
type TravelAPI interface {
	mapview.TravelSource
	Travels(ctx context.Context) ([]domain.Travel, error)
}

// Camera range limits for wheel zoom, in meters.
const (
	MinRange = 50_000
	MaxRange = 20_000_000
)

// MarkerHitRadius is how close, in pixels, a click must land to a marker.
const MarkerHitRadius = 12

// AppConfig wires an App.
type AppConfig struct {
	Width  int
	Height int
	API    TravelAPI
	Feed   *Feed
	Logger *slog.Logger
}

// App is the viewer state driven by the UI loop. Tick and the input
// methods must be called from the UI loop; data loading and fly-to
// choreographies run on their own goroutines.
type App struct {
	cfg    AppConfig
	logger *slog.Logger

	ticker    *Ticker
	camera    *mapview.Camera
	renderer  *Renderer
	markers   *mapview.MarkerSet
	selection *mapview.SelectionController
	minimap   *MiniMap
	projector *mapview.MiniMapProjector
	router    *Router

	ctx context.Context

	mu       sync.Mutex
	travels  []domain.Travel
	incoming []domain.Travel
	dirty    bool
	loadErr  error

	panning     bool
	swiping     bool
	swipeStartX float64
	lastX       float64
	lastY       float64
}

// NewApp builds the viewer on the initial camera.
func NewApp(cfg AppConfig) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	a := &App{
		cfg:     cfg,
		logger:  cfg.Logger,
		ticker:  NewTicker(),
		camera:  mapview.NewCamera(mapview.InitialCamera),
		minimap: &MiniMap{},
		router:  NewRouter(cfg.Logger),
		ctx:     context.Background(),
	}
	a.renderer = NewRenderer(a.camera)
	a.projector = mapview.NewMiniMapProjector(a.minimap, a.ticker)
	a.camera.Subscribe(a.projector.Update)
	a.projector.Update(a.camera.State())

	a.selection = mapview.NewSelectionController(mapview.SelectionConfig{
		Camera:        a.camera,
		Choreographer: mapview.NewFlyToChoreographer(a.camera, a.renderer, cfg.Logger),
		Source:        cfg.API,
		Router:        a.router,
		Frames:        a.ticker,
		Timers:        a.ticker,
		CardWidth:     mapview.DefaultCardWidth,
		CardHeight:    mapview.DefaultCardHeight,
		Logger:        cfg.Logger,
	})
	a.markers = mapview.NewMarkerSet(a.renderer, a.selectTravel)
	return a
}

// Start loads the travels and follows the change feed until ctx is done.
func (a *App) Start(ctx context.Context) {
	a.ctx = ctx
	go func() {
		if err := a.Refresh(ctx); err != nil {
			a.logger.Error("load travels failed", "error", err)
		}
	}()
	if a.cfg.Feed != nil {
		go a.cfg.Feed.Run(ctx, func(ev domain.ChangeEvent) {
			a.logger.Debug("change received", "entity", ev.Entity, "op", ev.Op, "id", ev.ID)
			if err := a.Refresh(ctx); err != nil {
				a.logger.Warn("refresh travels failed", "error", err)
			}
		})
	}
}

// Refresh fetches the travel list. The markers are reconciled on the next
// Tick.
func (a *App) Refresh(ctx context.Context) error {
	travels, err := a.cfg.API.Travels(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadErr = err
	if err != nil {
		return err
	}
	a.incoming = travels
	a.dirty = true
	return nil
}

// Tick advances the viewer by dt.
func (a *App) Tick(dt time.Duration) {
	a.mu.Lock()
	dirty, travels := a.dirty, a.incoming
	if dirty {
		a.travels = travels
		a.dirty = false
		a.incoming = nil
	}
	a.mu.Unlock()
	if dirty {
		a.markers.Reconcile(travels)
	}

	a.renderer.Step(dt)
	a.ticker.Advance(dt)
}

// Close stops the selection's pending callbacks and the minimap refit.
func (a *App) Close() {
	a.selection.Dispose()
	a.projector.Dispose()
}

func (a *App) selectTravel(id string, at mapview.LatLng) {
	go a.selection.Select(a.ctx, id, at)
}

// SelectIndex selects the i-th entry (1-based) of the location list.
func (a *App) SelectIndex(i int) bool {
	for _, e := range a.Locations() {
		if e.Index == i {
			a.selectTravel(e.ID, e.Location)
			return true
		}
	}
	return false
}

// Press handles a pointer press at (x, y). While the gallery is shown a
// press on the front card starts a swipe and a press on the backdrop closes
// the gallery. Otherwise it clicks a marker under the pointer or starts
// panning the map.
func (a *App) Press(x, y float64) {
	a.lastX, a.lastY = x, y
	if v := a.selection.View(); v.GalleryVisible {
		if !v.GalleryShown {
			return
		}
		if !a.onFrontCard(v.Gallery, x, y, 0) {
			v.Gallery.Close()
			return
		}
		a.swiping = true
		a.swipeStartX = x
		v.Gallery.Swipe().PointerDown(x)
		return
	}
	if a.renderer.Click(a.Projection(), x, y, MarkerHitRadius) {
		return
	}
	a.panning = !a.renderer.Animating()
}

// Drag handles pointer movement while pressed. A swipe whose pointer slides
// off the front card ends there, as if the pointer had been released.
func (a *App) Drag(x, y float64) {
	switch {
	case a.swiping:
		v := a.selection.View()
		if !v.GalleryVisible {
			a.swiping = false
			break
		}
		sw := v.Gallery.Swipe()
		if !a.onFrontCard(v.Gallery, x, y, x-a.swipeStartX) {
			sw.PointerLeave()
			a.swiping = false
			break
		}
		sw.PointerMove(x)
	case a.panning:
		p := a.Projection()
		from := p.Unproject(a.lastX, a.lastY)
		to := p.Unproject(x, y)
		c := a.camera.State().Center
		a.camera.Recenter(mapview.LatLng{
			Lat: math.Max(-85, math.Min(85, c.Lat+from.Lat-to.Lat)),
			Lng: c.Lng + from.Lng - to.Lng,
		})
	}
	a.lastX, a.lastY = x, y
}

// Release ends a press.
func (a *App) Release() {
	if a.swiping {
		if v := a.selection.View(); v.GalleryVisible {
			v.Gallery.Swipe().PointerUp()
		}
	}
	a.swiping = false
	a.panning = false
}

// FrontCardRect is the screen rectangle of the gallery's front card at rest,
// centered on the screen.
func (a *App) FrontCardRect(g *mapview.Gallery) (x0, y0, x1, y1 float64) {
	o := g.Options()
	cx, cy := float64(a.cfg.Width)/2, float64(a.cfg.Height)/2
	return cx - o.CardWidth/2, cy - o.CardHeight/2, cx + o.CardWidth/2, cy + o.CardHeight/2
}

// onFrontCard reports whether (x, y) lies on the front card shifted by
// offsetX, the drag offset it follows.
func (a *App) onFrontCard(g *mapview.Gallery, x, y, offsetX float64) bool {
	x0, y0, x1, y1 := a.FrontCardRect(g)
	return x >= x0+offsetX && x <= x1+offsetX && y >= y0 && y <= y1
}

// Zoom changes the camera range by wheel steps; positive zooms in.
func (a *App) Zoom(steps float64) {
	if steps == 0 || a.renderer.Animating() {
		return
	}
	s := a.camera.State()
	s.Range = math.Max(MinRange, math.Min(MaxRange, s.Range*math.Pow(0.8, steps)))
	a.camera.OnCameraChange(s)
}

// Key routes a key to the selection. Escape with nothing to close goes back
// to the map route.
func (a *App) Key(k mapview.Key) {
	if a.selection.HandleKey(k) {
		return
	}
	if k == mapview.KeyEscape && a.router.Path() != MapPath {
		a.router.Back()
	}
}

// OpenStory opens the full story of the selected travel.
func (a *App) OpenStory() {
	if a.selection.View().Detail != nil {
		a.selection.ViewFullStory()
	}
}

// Camera returns the current camera.
func (a *App) Camera() mapview.CameraState { return a.camera.State() }

// Projection is the main map projection.
func (a *App) Projection() Projection {
	return ProjectionFor(a.camera.State(), a.cfg.Width, a.cfg.Height)
}

// Markers returns the drawn markers.
func (a *App) Markers() []mapview.Marker { return a.renderer.Markers() }

// Selection returns the selection snapshot.
func (a *App) Selection() mapview.SelectionView { return a.selection.View() }

// Flying reports whether a camera transition is running.
func (a *App) Flying() bool { return a.renderer.Animating() }

// Locations is the side list relative to the camera center.
func (a *App) Locations() []mapview.LocationEntry {
	a.mu.Lock()
	travels := a.travels
	a.mu.Unlock()
	return mapview.LocationList(travels, a.camera.State().Center.LatLng())
}

// MiniMap returns the minimap and its camera markers.
func (a *App) MiniMap() (*MiniMap, mapview.LatLngAltitude, mapview.LatLngAltitude, float64) {
	pos, heading := a.projector.CameraMarker()
	return a.minimap, a.projector.ViewCenter(), pos, heading
}

// Route is the current route.
func (a *App) Route() string { return a.router.Path() }

// LoadError is the last travel list error, if any.
func (a *App) LoadError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadErr
}
