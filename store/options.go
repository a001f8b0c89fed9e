package store

import (
	"log/slog"

	"github.com/c360/messagestore/audit"
	"github.com/c360/messagestore/metric"
)

// Option configures a Store using the functional options pattern.
type Option func(*storeOptions)

// storeOptions holds optional collaborators chosen at construction.
type storeOptions struct {
	audit    audit.Log
	logger   *slog.Logger
	registry *metric.Registry
}

// WithAudit sets the audit log notified on store lifecycle events. Nil is
// ignored; the default is a silent log.
func WithAudit(log audit.Log) Option {
	return func(opts *storeOptions) {
		if log != nil {
			opts.audit = log
		}
	}
}

// WithLogger sets the structured logger for operational logging.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *storeOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics for store and cache operations,
// registered against the given registry.
func WithMetrics(registry *metric.Registry) Option {
	return func(opts *storeOptions) {
		opts.registry = registry
	}
}

// applyOptions applies functional options to the default settings.
func applyOptions(options ...Option) *storeOptions {
	opts := &storeOptions{}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
