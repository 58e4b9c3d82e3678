package courier

import (
	"context"

	"github.com/five82/shelf/internal/shelf"
)

// Courier is the book backend the conductor talks to. Implemented by
// *Simulated (in-process) and *Client (HTTP to shelfd).
type Courier interface {
	// Post stores a book and returns it with its newly assigned id.
	Post(ctx context.Context, book shelf.Book) (shelf.BookResource, error)
	// FetchAll returns every stored book keyed by id.
	FetchAll(ctx context.Context) (shelf.Normalized, error)
	// Suggest returns the fixed suggestion list keyed by position.
	Suggest(ctx context.Context) (shelf.Normalized, error)
}

// Ensure implementations satisfy Courier at compile time.
var (
	_ Courier = (*Simulated)(nil)
	_ Courier = (*Client)(nil)
)

// Suggestions is the hardcoded list every backend suggests.
func Suggestions() []shelf.Book {
	return []shelf.Book{
		{Title: "Software Theory", Author: "Frederica Frabetti"},
		{Title: "Dreaming in Code", Author: "Scott Rosenberg"},
	}
}
