package courier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/shelf"
)

// DefaultLatency is the fixed delay the simulated backend adds to every call.
const DefaultLatency = 500 * time.Millisecond

// SimulatedOptions configure a Simulated backend.
type SimulatedOptions struct {
	Repository library.Repository // nil uses an in-memory repository
	Latency    time.Duration      // negative means no delay; zero uses DefaultLatency
	FirstID    int                // first id handed out
	Logger     *slog.Logger
}

// Simulated is an in-process backend with a fixed response latency. It owns
// the id counter and the repository; callers only see them through the
// Courier methods.
type Simulated struct {
	repo    library.Repository
	latency time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	nextID int
}

// NewSimulated builds a simulated backend.
func NewSimulated(opts SimulatedOptions) *Simulated {
	repo := opts.Repository
	if repo == nil {
		repo = library.NewMemory()
	}
	latency := opts.Latency
	switch {
	case latency == 0:
		latency = DefaultLatency
	case latency < 0:
		latency = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{
		repo:    repo,
		latency: latency,
		logger:  logger.With(slog.String("component", "courier")),
		nextID:  opts.FirstID,
	}
}

// Post assigns the next id, waits out the latency, then stores the book.
func (s *Simulated) Post(ctx context.Context, book shelf.Book) (shelf.BookResource, error) {
	s.mu.Lock()
	created := book.WithID(s.nextID)
	s.nextID++
	s.mu.Unlock()

	if err := s.wait(ctx); err != nil {
		return shelf.BookResource{}, err
	}
	if err := s.repo.Insert(ctx, created); err != nil {
		return shelf.BookResource{}, fmt.Errorf("store book: %w", err)
	}
	s.logger.Info("api post success", slog.Int("id", created.ID))
	return created, nil
}

// FetchAll waits out the latency and returns every stored book.
func (s *Simulated) FetchAll(ctx context.Context) (shelf.Normalized, error) {
	if err := s.wait(ctx); err != nil {
		return shelf.Normalized{}, err
	}
	books, err := s.repo.List(ctx)
	if err != nil {
		return shelf.Normalized{}, fmt.Errorf("list books: %w", err)
	}
	s.logger.Info("api fetch success", slog.Int("books", len(books)))
	return shelf.NormalizeBooks(books), nil
}

// Suggest waits out the latency and returns the fixed suggestions.
func (s *Simulated) Suggest(ctx context.Context) (shelf.Normalized, error) {
	if err := s.wait(ctx); err != nil {
		return shelf.Normalized{}, err
	}
	s.logger.Info("api suggest resolved")
	return shelf.NormalizeSuggestions(Suggestions()), nil
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
