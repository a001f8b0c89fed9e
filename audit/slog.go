package audit

import (
	"log/slog"

	"github.com/c360/messagestore/storage"
)

// Slog writes audit events to a structured logger.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates an audit log backed by logger. A nil logger uses
// slog.Default().
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

func (s *Slog) Saving(id storage.ID) {
	s.logger.Info("saving message", "event", "saving", "id", int64(id))
}

func (s *Slog) Saved(id storage.ID) {
	s.logger.Info("saved message", "event", "saved", "id", int64(id))
}

func (s *Slog) Reading(id storage.ID) {
	s.logger.Debug("reading message", "event", "reading", "id", int64(id))
}

func (s *Slog) DidNotFind(id storage.ID) {
	s.logger.Debug("message not found", "event", "did_not_find", "id", int64(id))
}

func (s *Slog) Returning(id storage.ID) {
	s.logger.Debug("returning message", "event", "returning", "id", int64(id))
}

var _ Log = (*Slog)(nil)
