package mapview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// TravelSource loads the detail of a travel. A nil detail with a nil error
// means the travel does not exist.
type TravelSource interface {
	TravelByID(ctx context.Context, id string) (*domain.TravelDetail, error)
}

// Router switches the application route.
type Router interface {
	Navigate(path string)
}

// StoryPath is the route of a travel's full story.
func StoryPath(id string) string {
	return "/travel/" + id
}

// SelectionView is a snapshot of the selection for rendering.
type SelectionView struct {
	SelectedID string
	Detail     *domain.TravelDetail
	Gallery    *Gallery
	// GalleryVisible is set while the gallery is mounted, including its
	// entrance delay and exit animation. GalleryShown is set only once the
	// entrance is done and until the gallery starts closing.
	GalleryVisible bool
	GalleryShown   bool
	PopupVisible   bool
}

// SelectionConfig wires a SelectionController.
type SelectionConfig struct {
	Camera        *Camera
	Choreographer *FlyToChoreographer
	Source        TravelSource
	Router        Router
	Frames        FrameScheduler
	Timers        Scheduler
	CardWidth     float64
	CardHeight    float64
	Logger        *slog.Logger
}

// SelectionController owns the selected travel and the gallery overlay.
type SelectionController struct {
	cfg SelectionConfig

	mu          sync.Mutex
	selectedID  string
	detail      *domain.TravelDetail
	showGallery bool
	gallery     *Gallery
	// resetPending is set when the selection is cleared while a flight is
	// still running; the zoom is reset again once that flight ends.
	resetPending bool

	// OnChange is called after the selection or overlay changed.
	OnChange func()
}

// NewSelectionController returns a controller with nothing selected.
func NewSelectionController(cfg SelectionConfig) *SelectionController {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SelectionController{cfg: cfg}
}

// View returns the current selection snapshot.
func (s *SelectionController) View() SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SelectionView{SelectedID: s.selectedID, Detail: s.detail}
	if s.showGallery && s.gallery != nil && s.detail.HasMedia() {
		v.Gallery = s.gallery
		v.GalleryVisible = true
		v.GalleryShown = s.gallery.Visible()
	}
	v.PopupVisible = s.detail != nil && !v.GalleryVisible
	return v
}

// Select handles a marker or list click: it selects id, flies the camera to
// loc and, once the flight has completed, reveals the gallery if the travel
// has media. It blocks for the whole choreography.
//
// A click during a running choreography only switches the selected travel;
// the camera is left to the running flight and the popup is shown instead of
// the gallery.
func (s *SelectionController) Select(ctx context.Context, id string, loc LatLng) {
	s.mu.Lock()
	s.selectedID = id
	s.detail = nil
	s.showGallery = false
	old := s.gallery
	s.gallery = nil
	s.mu.Unlock()
	if old != nil {
		old.Dispose()
	}
	s.changed()

	loaded := make(chan *domain.TravelDetail, 1)
	go func() {
		d, err := s.cfg.Source.TravelByID(ctx, id)
		if err != nil {
			s.cfg.Logger.Warn("load travel failed", "travel_id", id, "error", err)
			d = nil
		}
		s.mu.Lock()
		if s.selectedID == id {
			s.detail = d
		}
		s.mu.Unlock()
		s.changed()
		loaded <- d
	}()

	outcome := s.cfg.Choreographer.Fly(ctx, loc)
	detail := <-loaded
	if outcome != FlightDropped {
		s.settleZoom()
	}
	if outcome != FlightCompleted || !detail.HasMedia() {
		return
	}

	s.mu.Lock()
	if s.selectedID != id {
		s.mu.Unlock()
		return
	}
	s.gallery = NewGallery(cardsFor(detail), GalleryOptions{
		CardWidth:       s.cfg.CardWidth,
		CardHeight:      s.cfg.CardHeight,
		TravelTitle:     detail.Title,
		OnClose:         s.CloseGallery,
		OnViewFullStory: s.ViewFullStory,
	}, s.cfg.Frames, s.cfg.Timers)
	s.showGallery = true
	s.mu.Unlock()
	s.changed()
}

// HandleKey routes keyboard input: Escape closes the gallery with its exit
// animation, or the popup when no gallery is shown.
func (s *SelectionController) HandleKey(k Key) bool {
	v := s.View()
	switch {
	case v.GalleryVisible:
		return v.Gallery.HandleKey(k)
	case v.PopupVisible && k == KeyEscape:
		s.ClosePopup()
		return true
	}
	return false
}

// CloseGallery clears the selection, hides the gallery and resets the zoom.
func (s *SelectionController) CloseGallery() { s.clear() }

// ClosePopup clears the selection and resets the zoom.
func (s *SelectionController) ClosePopup() { s.clear() }

// ViewFullStory navigates to the selected travel's story page.
func (s *SelectionController) ViewFullStory() {
	s.mu.Lock()
	id := s.selectedID
	s.mu.Unlock()
	if id == "" || s.cfg.Router == nil {
		return
	}
	s.cfg.Router.Navigate(StoryPath(id))
}

// Dispose cancels the gallery's pending callbacks.
func (s *SelectionController) Dispose() {
	s.mu.Lock()
	g := s.gallery
	s.gallery = nil
	s.mu.Unlock()
	if g != nil {
		g.Dispose()
	}
}

func (s *SelectionController) clear() {
	flying := s.cfg.Choreographer != nil && s.cfg.Choreographer.InProgress()
	s.mu.Lock()
	s.resetPending = s.resetPending || flying
	s.selectedID = ""
	s.detail = nil
	s.showGallery = false
	g := s.gallery
	s.gallery = nil
	s.mu.Unlock()
	if g != nil {
		g.Dispose()
	}
	s.cfg.Camera.ResetZoom()
	s.changed()
}

// settleZoom runs after a flight this controller started has ended. The
// flight kept moving the camera after a close, so the zoom is reset again
// unless another travel was selected meanwhile.
func (s *SelectionController) settleZoom() {
	s.mu.Lock()
	reset := s.resetPending && s.selectedID == ""
	s.resetPending = false
	s.mu.Unlock()
	if reset {
		s.cfg.Camera.ResetZoom()
		s.changed()
	}
}

func (s *SelectionController) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func cardsFor(d *domain.TravelDetail) []Card {
	cards := make([]Card, 0, len(d.Media))
	for i, m := range d.Media {
		id := m.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", d.ID, i)
		}
		cards = append(cards, Card{ID: id, ImageURL: m.URL, Title: d.Title, Caption: m.Caption})
	}
	return cards
}
