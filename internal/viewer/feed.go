package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fasthttp/websocket"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// Feed follows the API's WebSocket change feed and reconnects when the
// connection drops.
type Feed struct {
	URL    string
	Dialer *websocket.Dialer
	Retry  time.Duration
	Logger *slog.Logger
}

// NewFeed returns a feed for the given ws:// URL.
func NewFeed(wsURL string, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{URL: wsURL, Dialer: websocket.DefaultDialer, Retry: 5 * time.Second, Logger: logger}
}

// Run calls onChange for every change event until ctx is done.
func (f *Feed) Run(ctx context.Context, onChange func(domain.ChangeEvent)) {
	for {
		err := f.listen(ctx, onChange)
		if ctx.Err() != nil {
			return
		}
		f.Logger.Warn("change feed disconnected", "url", f.URL, "error", err, "retry_in", f.Retry)

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.Retry):
		}
	}
}

func (f *Feed) listen(ctx context.Context, onChange func(domain.ChangeEvent)) error {
	conn, _, err := f.Dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.URL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	f.Logger.Info("change feed connected", "url", f.URL)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev domain.ChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Op == "" {
			continue
		}
		onChange(ev)
	}
}
