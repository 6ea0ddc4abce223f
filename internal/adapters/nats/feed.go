package natsadapter

import "github.com/nats-io/nats.go"

// Feed relays published change events to live listeners (WebSocket
// clients). It uses plain subscriptions, so listeners only see events
// published while they are subscribed.
type Feed struct {
	conn *nats.Conn
}

// NewFeed creates a feed over conn.
func NewFeed(conn *nats.Conn) *Feed {
	return &Feed{conn: conn}
}

// Subscribe calls fn with the payload of every message on subject. The
// returned function unsubscribes.
func (f *Feed) Subscribe(subject string, fn func(data []byte)) (func(), error) {
	sub, err := f.conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Connected reports whether the connection is up, for readiness probes.
func (f *Feed) Connected() bool {
	return f.conn != nil && f.conn.IsConnected()
}
