// Package messagestore provides a keyed text-message store built from three
// swappable collaborators: a persistence backend, a write-through cache, and
// an audit log.
//
// # Architecture
//
// The public surface is the store orchestrator; backend, cache, and audit log
// are collaborators it owns or holds by reference:
//
//	┌─────────────────────────────────────┐
//	│         store.Store                 │  Save / Read (CQS)
//	│  (per-id locking, optional results) │
//	└──────┬───────────┬──────────┬───────┘
//	       │           │          │
//	┌──────▼─────┐ ┌───▼──────┐ ┌─▼─────────┐
//	│  storage   │ │ pkg/cache│ │   audit   │
//	│  .Backend  │ │ Cache[V] │ │   .Log    │
//	└────────────┘ └──────────┘ └───────────┘
//
// The contract is command/query separated. Save durably writes a payload for
// an id and warms the cache; Read answers with an optional.Value that is
// empty when no payload exists - absence is data, never an error. Errors are
// reserved for invalid input and backend failure, classified by the errors
// package.
//
// # Backends
//
// A backend implements three segregated capabilities from the storage
// package: Locator (pure id to location mapping), Reader, and Writer. Four
// implementations ship with the module:
//
//   - storage/filestore: one file per id under a validated root directory
//   - storage/memstore: in-memory map, with failure injection for tests
//   - storage/boltstore: embedded bbolt database, one bucket for all ids
//   - storage/kvstore: NATS JetStream key-value bucket via natsclient
//
// # Usage
//
//	backend, err := filestore.New(filestore.DefaultConfig("/var/lib/messages"))
//	if err != nil {
//		return err
//	}
//
//	s, err := store.New(store.DefaultConfig(), backend,
//		store.WithAudit(audit.NewSlog(slog.Default())),
//	)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if err := s.Save(ctx, 40, "hello"); err != nil {
//		return err
//	}
//
//	msg, err := s.Read(ctx, 40)
//	if err != nil {
//		return err
//	}
//	fmt.Println(msg.OrElse("<no message>"))
//
// One store instance is safe for concurrent callers; a Save and Read racing
// on the same id are linearizable with respect to that id. Two store
// instances must not share a backend root mutably - the orchestrator assumes
// sole-writer knowledge of cache coherency.
package messagestore
