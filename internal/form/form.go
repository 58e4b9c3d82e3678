// Package form collects and validates the add-a-book form.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/shelf/internal/shelf"
)

// Field names used by the add-a-book form.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
)

// ErrMissingField is returned when a form field has no value.
var ErrMissingField = errors.New("missing form field value")

// Field is one named input.
type Field struct {
	Name  string
	Value string
}

// Values maps field names to their trimmed values, keeping field order for
// validation messages.
type Values struct {
	order  []string
	values map[string]string
}

// Serialize converts fields into Values. Later fields with the same name win.
func Serialize(fields []Field) Values {
	v := Values{values: make(map[string]string, len(fields))}
	for _, f := range fields {
		if _, seen := v.values[f.Name]; !seen {
			v.order = append(v.order, f.Name)
		}
		v.values[f.Name] = strings.TrimSpace(f.Value)
	}
	return v
}

// Get returns the value for name.
func (v Values) Get(name string) string {
	return v.values[name]
}

// Validate fails on the first empty field.
func (v Values) Validate() error {
	for _, name := range v.order {
		if v.values[name] == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	return nil
}

// Book builds the payload submitted to the conductor.
func (v Values) Book() shelf.Book {
	return shelf.Book{Title: v.Get(FieldTitle), Author: v.Get(FieldAuthor)}
}

// BookFields returns the form's fields for a title and author pair.
func BookFields(title, author string) []Field {
	return []Field{
		{Name: FieldTitle, Value: title},
		{Name: FieldAuthor, Value: author},
	}
}
