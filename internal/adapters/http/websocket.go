package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	natsadapter "github.com/wandering-tales/wandering-tales/internal/adapters/nats"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

// wsMessage is sent by clients to change what they follow.
type wsMessage struct {
	Action   string `json:"action"`    // "subscribe" | "unsubscribe"
	Channel  string `json:"channel"`   // "travels" | "media" | "all" (default: all)
	TravelID string `json:"travel_id"` // optional, "" = every travel
}

// subjectFor maps a channel and optional travel id to a feed subject.
func subjectFor(channel, travelID string) (string, bool) {
	switch channel {
	case "", "all":
		if travelID != "" {
			return "journal.*." + travelID, true
		}
		return natsadapter.SubjectAll, true
	case "travels":
		if travelID != "" {
			return natsadapter.TravelSubject(travelID), true
		}
		return natsadapter.SubjectTravelAll, true
	case "media":
		if travelID != "" {
			return natsadapter.MediaSubject(travelID), true
		}
		return natsadapter.SubjectMediaAll, true
	}
	return "", false
}

// WebSocketHandler relays change events to connected clients. Every client
// follows all changes until it sends its own subscriptions, e.g.
// {"action":"subscribe","channel":"media","travel_id":"..."}.
func WebSocketHandler(feed ChangeFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		if feed == nil {
			_ = c.WriteJSON(map[string]string{"error": "change feed unavailable"})
			return
		}

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]func())

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(data []byte) {
			_ = writeJSON(json.RawMessage(data))
		}

		unsub, err := feed.Subscribe(natsadapter.SubjectAll, relay)
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectAll] = unsub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject, ok := subjectFor(m.Channel, m.TravelID)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				unsub, err := feed.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = unsub
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if unsub, exists := subs[subject]; exists {
					unsub()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, unsub := range subs {
			unsub()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
