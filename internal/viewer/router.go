package viewer

import (
	"log/slog"
	"sync"
)

// MapPath is the route of the globe.
const MapPath = "/map"

// Router records the current route. The desktop viewer has a single
// screen, so navigation is logged and the route shown in the status bar.
type Router struct {
	logger *slog.Logger

	mu      sync.Mutex
	path    string
	history []string
}

// NewRouter returns a router on MapPath. A nil logger falls back to
// slog.Default().
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger, path: MapPath}
}

// Navigate switches to path.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	r.history = append(r.history, r.path)
	r.path = path
	r.mu.Unlock()
	r.logger.Info("navigate", "path", path)
}

// Back returns to the previous route, if any.
func (r *Router) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.history); n > 0 {
		r.path = r.history[n-1]
		r.history = r.history[:n-1]
	}
}

// Path is the current route.
func (r *Router) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}
