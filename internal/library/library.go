// Package library stores the books a backend has accepted.
package library

import (
	"context"
	"sync"

	"github.com/five82/shelf/internal/shelf"
)

// Repository persists books in the order they were inserted.
type Repository interface {
	Insert(ctx context.Context, book shelf.BookResource) error
	List(ctx context.Context) ([]shelf.BookResource, error)
}

// Ensure implementations satisfy Repository at compile time.
var (
	_ Repository = (*Memory)(nil)
	_ Repository = (*Postgres)(nil)
)

// Memory is a process-local Repository.
type Memory struct {
	mu    sync.RWMutex
	books []shelf.BookResource
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

// Insert appends book.
func (m *Memory) Insert(_ context.Context, book shelf.BookResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = append(m.books, book)
	return nil
}

// List returns a copy of every stored book.
func (m *Memory) List(_ context.Context) ([]shelf.BookResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.books) == 0 {
		return nil, nil
	}
	dup := make([]shelf.BookResource, len(m.books))
	copy(dup, m.books)
	return dup, nil
}
