package courier

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/five82/shelf/internal/shelf"
)

func newInstant(t *testing.T) (*Simulated, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSimulated(SimulatedOptions{
		Latency: -1,
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	}), &buf
}

func TestSimulated_PostAssignsMonotonicIDsFromZero(t *testing.T) {
	s, _ := newInstant(t)
	ctx := context.Background()

	for want, title := range []string{"Dune", "Emma", "Ulysses"} {
		got, err := s.Post(ctx, shelf.Book{Title: title, Author: "x"})
		if err != nil {
			t.Fatalf("Post(%s) returned error: %v", title, err)
		}
		if got.ID != want || got.Title != title {
			t.Fatalf("Post(%s) = %#v, want id %d", title, got, want)
		}
	}
}

func TestSimulated_FetchAllReturnsStoredBooksByID(t *testing.T) {
	s, logs := newInstant(t)
	ctx := context.Background()

	empty, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if empty.Len() != 0 || empty.ByID == nil {
		t.Fatalf("FetchAll on empty backend = %#v, want empty resource", empty)
	}

	if _, err := s.Post(ctx, shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	books, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	want := shelf.BookResource{ID: 0, Title: "Dune", Author: "Herbert"}
	if books.ByID[0] != want || len(books.IDs) != 1 || books.IDs[0] != 0 {
		t.Fatalf("FetchAll = %#v, want %#v keyed 0", books, want)
	}

	for _, msg := range []string{"api post success", "api fetch success"} {
		if !strings.Contains(logs.String(), msg) {
			t.Fatalf("logs = %q, want %q", logs.String(), msg)
		}
	}
}

func TestSimulated_SuggestReturnsFixedListByIndex(t *testing.T) {
	s, _ := newInstant(t)
	got, err := s.Suggest(context.Background())
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	fixed := Suggestions()
	if len(got.ByID) != len(fixed) {
		t.Fatalf("Suggest returned %d entries, want %d", len(got.ByID), len(fixed))
	}
	for idx, b := range fixed {
		if got.ByID[idx] != b.WithID(idx) {
			t.Fatalf("suggestion %d = %#v, want %#v", idx, got.ByID[idx], b.WithID(idx))
		}
	}
}

func TestSimulated_HonorsLatencyAndCancellation(t *testing.T) {
	s := NewSimulated(SimulatedOptions{Latency: 50 * time.Millisecond})

	start := time.Now()
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("Suggest resolved after %v, want >= 50ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Post(ctx, shelf.Book{Title: "x", Author: "y"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Post with cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestNewSimulated_Defaults(t *testing.T) {
	s := NewSimulated(SimulatedOptions{})
	if s.latency != DefaultLatency {
		t.Fatalf("latency = %v, want %v", s.latency, DefaultLatency)
	}
	if s.repo == nil {
		t.Fatalf("repo is nil, want in-memory default")
	}
}
