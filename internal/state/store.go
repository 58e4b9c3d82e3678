package state

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/five82/shelf/internal/keypath"
	"github.com/five82/shelf/internal/shelf"
)

// Snapshot is the full content of the store.
type Snapshot struct {
	Books          shelf.Normalized `json:"books"`
	SuggestedBooks shelf.Normalized `json:"suggestedBooks"`
}

// EmptySnapshot returns a snapshot with both collections empty.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Books:          shelf.NewNormalized(),
		SuggestedBooks: shelf.NewNormalized(),
	}
}

// Collection returns the named collection.
func (s Snapshot) Collection(c shelf.Collection) shelf.Normalized {
	switch c {
	case shelf.CollectionBooks:
		return s.Books
	case shelf.CollectionSuggestedBooks:
		return s.SuggestedBooks
	}
	panic(fmt.Sprintf("state: unknown collection %q", c))
}

// Store is the normalized entity model. It has a single writer (the
// conductor) and any number of readers.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Create builds a store seeded with initial.
func Create(initial Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{snapshot: cloneSnapshot(initial)}
	logger.Info("model initialized",
		slog.Int("books", initial.Books.Len()),
		slog.Int("suggested_books", initial.SuggestedBooks.Len()))
	return s
}

// FindAll returns a copy of the id -> entity mapping for c.
func (s *Store) FindAll(c shelf.Collection) map[int]shelf.BookResource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.collection(c).ByID
	out := make(map[int]shelf.BookResource, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Update stores entity under its id and appends the id to the collection's
// order. Ids are not deduplicated: repeating the call leaves ByID unchanged
// but grows IDs each time.
func (s *Store) Update(c shelf.Collection, entity shelf.BookResource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.collection(c)
	if n.ByID == nil {
		n.ByID = make(map[int]shelf.BookResource)
	}
	n.ByID[entity.ID] = entity
	n.IDs = append(n.IDs, entity.ID)
}

// UpdateAll replaces the collection with data. Nothing from the previous
// contents survives.
func (s *Store) UpdateAll(c shelf.Collection, data shelf.Normalized) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(c, data.Clone())
}

// Snapshot returns a deep copy of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snapshot)
}

// Lookup reads a value by dot path from the document form of the store, for
// example "books.byId.0.title" or "suggestedBooks.ids.1".
func (s *Store) Lookup(path string) (any, error) {
	return keypath.Get(s.Document(), path)
}

// Document renders the store as nested maps keyed the way the wire format
// names them.
func (s *Store) Document() map[string]any {
	snap := s.Snapshot()
	doc := make(map[string]any, 2)
	for _, c := range shelf.Collections() {
		doc[string(c)] = normalizedDocument(snap.Collection(c))
	}
	return doc
}

func (s *Store) collection(c shelf.Collection) *shelf.Normalized {
	switch c {
	case shelf.CollectionBooks:
		return &s.snapshot.Books
	case shelf.CollectionSuggestedBooks:
		return &s.snapshot.SuggestedBooks
	}
	panic(fmt.Sprintf("state: unknown collection %q", c))
}

func (s *Store) assign(c shelf.Collection, n shelf.Normalized) {
	*s.collection(c) = n
}

func normalizedDocument(n shelf.Normalized) map[string]any {
	byID := make(map[string]any, len(n.ByID))
	for id, b := range n.ByID {
		byID[strconv.Itoa(id)] = map[string]any{
			"id":     b.ID,
			"title":  b.Title,
			"author": b.Author,
		}
	}
	ids := make([]any, len(n.IDs))
	for i, id := range n.IDs {
		ids[i] = id
	}
	return map[string]any{"byId": byID, "ids": ids}
}

func cloneSnapshot(s Snapshot) Snapshot {
	return Snapshot{
		Books:          s.Books.Clone(),
		SuggestedBooks: s.SuggestedBooks.Clone(),
	}
}
