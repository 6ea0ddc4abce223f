package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// Subjects. Travel and media events are keyed by travel id so clients can
// follow a single travel.
const (
	SubjectAll         = "journal.>"
	SubjectTravelAll   = "journal.travel.>"
	SubjectMediaAll    = "journal.media.>"
	subjectTravelStem  = "journal.travel."
	subjectMediaStem   = "journal.media."
	subjectBroadcastID = "all"
)

// TravelSubject is the subject of changes to one travel.
func TravelSubject(travelID string) string {
	if travelID == "" {
		travelID = subjectBroadcastID
	}
	return subjectTravelStem + travelID
}

// MediaSubject is the subject of media changes of one travel.
func MediaSubject(travelID string) string {
	if travelID == "" {
		travelID = subjectBroadcastID
	}
	return subjectMediaStem + travelID
}

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("wandering-tales"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher enables JetStream on conn and ensures the change stream exists.
func NewPublisher(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "JOURNAL_CHANGES",
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishTravelChange publishes a travel change event.
func (p *Publisher) PublishTravelChange(ctx context.Context, ev domain.ChangeEvent) error {
	return p.publish(ctx, TravelSubject(ev.TravelID), ev)
}

// PublishMediaChange publishes a media change event.
func (p *Publisher) PublishMediaChange(ctx context.Context, ev domain.ChangeEvent) error {
	return p.publish(ctx, MediaSubject(ev.TravelID), ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, ev domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Conn returns the underlying connection.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
