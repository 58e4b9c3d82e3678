// Package state holds the normalized entity model that the UI renders from.
//
// # Shape
//
// The store keeps two collections, "books" and "suggestedBooks". Each is a
// shelf.Normalized: entities indexed by id plus the ordered list of ids as
// they were written.
//
//	books:          { byId: {0: {id:0, title:"Dune", author:"Herbert"}}, ids: [0] }
//	suggestedBooks: { byId: {0: {...}, 1: {...}},                        ids: [0, 1] }
//
// # Operations
//
//   - Create: seed a new store from an initial snapshot (logs "model initialized")
//   - FindAll: the byId mapping of one collection
//   - Update: write one entity and append its id (ids are not deduplicated)
//   - UpdateAll: replace one collection wholesale
//   - Lookup: read any value by dot path, e.g. "books.byId.0.title"
//
// Writes go through typed methods keyed by shelf.Collection; only reads accept
// string paths.
//
// # Concurrency
//
// The conductor is the single writer. The UI reads from its own goroutine, so
// access is guarded by a sync.RWMutex and every read returns a copy:
//
//	store := state.Create(state.EmptySnapshot(), logger)
//	store.UpdateAll(shelf.CollectionBooks, books)
//	snap := store.Snapshot() // safe to hand to a renderer
//
// Each Create call returns an independent store. There is no package-level
// store.
package state
