package shelf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCollection is returned when a collection name is not one of the
// store's collections.
var ErrUnknownCollection = errors.New("unknown collection")

// Book is a book as entered by the user.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// WithID attaches a backend-assigned id to the book.
func (b Book) WithID(id int) BookResource {
	return BookResource{ID: id, Title: b.Title, Author: b.Author}
}

// BookResource is a book after the backend has assigned it an id.
type BookResource struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Collection names a normalized collection held by the store.
type Collection string

const (
	CollectionBooks          Collection = "books"
	CollectionSuggestedBooks Collection = "suggestedBooks"
)

// Collections lists every collection in document order.
func Collections() []Collection {
	return []Collection{CollectionBooks, CollectionSuggestedBooks}
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	switch c := Collection(strings.TrimSpace(name)); c {
	case CollectionBooks, CollectionSuggestedBooks:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
}
