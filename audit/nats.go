package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/c360/messagestore/storage"
)

// Publisher is the slice of a NATS connection the audit publisher needs.
// *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the wire form of one audit event.
type Event struct {
	Event     string    `json:"event"` // "saving", "saved", "reading", "did_not_find", "returning"
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSPublisher publishes audit events as JSON to a NATS subject.
//
// Publishing is fire-and-forget: a publish failure is logged and swallowed,
// never surfaced to the store operation that triggered the event.
type NATSPublisher struct {
	publisher Publisher
	subject   string
	logger    *slog.Logger
}

// NewNATSPublisher creates an audit log that publishes to subject via
// publisher. A nil logger uses slog.Default().
func NewNATSPublisher(publisher Publisher, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{
		publisher: publisher,
		subject:   subject,
		logger:    logger,
	}
}

func (p *NATSPublisher) publish(event string, id storage.ID) {
	data, err := json.Marshal(Event{
		Event:     event,
		ID:        int64(id),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("failed to marshal audit event",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	if err := p.publisher.Publish(p.subject, data); err != nil {
		p.logger.Warn("failed to publish audit event",
			slog.String("subject", p.subject),
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}

func (p *NATSPublisher) Saving(id storage.ID)     { p.publish("saving", id) }
func (p *NATSPublisher) Saved(id storage.ID)      { p.publish("saved", id) }
func (p *NATSPublisher) Reading(id storage.ID)    { p.publish("reading", id) }
func (p *NATSPublisher) DidNotFind(id storage.ID) { p.publish("did_not_find", id) }
func (p *NATSPublisher) Returning(id storage.ID)  { p.publish("returning", id) }

var _ Log = (*NATSPublisher)(nil)
