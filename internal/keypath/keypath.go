// Package keypath reads and writes nested documents by dot-separated paths
// such as "books.byId.0.title".
//
// Documents are the shapes produced by decoding JSON or TOML into
// map[string]any: nested maps, with []any for arrays. A path segment that
// lands on an array is parsed as an index.
package keypath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyPath is returned for a blank path.
	ErrEmptyPath = errors.New("path is empty")
	// ErrMissingSegment is returned when a segment does not exist.
	ErrMissingSegment = errors.New("missing path segment")
	// ErrNotContainer is returned when a path walks into a scalar value.
	ErrNotContainer = errors.New("not a container")
)

// Get returns the value at path.
func Get(root map[string]any, path string) (any, error) {
	parts, err := split(path)
	if err != nil {
		return nil, err
	}
	var cur any = root
	for i, part := range parts {
		cur, err = child(cur, part)
		if err != nil {
			return nil, fmt.Errorf("get %q: %w", strings.Join(parts[:i+1], "."), err)
		}
	}
	return cur, nil
}

// Set assigns value at path, mutating root in place, and returns root. All
// segments but the last must already exist; the last is created or replaced.
func Set(root map[string]any, path string, value any) (map[string]any, error) {
	parts, err := split(path)
	if err != nil {
		return root, err
	}
	var parent any = root
	for i, part := range parts[:len(parts)-1] {
		parent, err = child(parent, part)
		if err != nil {
			return root, fmt.Errorf("set %q: %w", strings.Join(parts[:i+1], "."), err)
		}
	}

	last := parts[len(parts)-1]
	switch container := parent.(type) {
	case map[string]any:
		if container == nil {
			return root, fmt.Errorf("set %q: %w", path, ErrMissingSegment)
		}
		container[last] = value
	case []any:
		idx, err := index(container, last)
		if err != nil {
			return root, fmt.Errorf("set %q: %w", path, err)
		}
		container[idx] = value
	default:
		return root, fmt.Errorf("set %q: %w", path, ErrNotContainer)
	}
	return root, nil
}

func split(path string) ([]string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, ErrEmptyPath
	}
	return strings.Split(trimmed, "."), nil
}

func child(cur any, part string) (any, error) {
	switch container := cur.(type) {
	case map[string]any:
		v, ok := container[part]
		if !ok {
			return nil, ErrMissingSegment
		}
		return v, nil
	case []any:
		idx, err := index(container, part)
		if err != nil {
			return nil, err
		}
		return container[idx], nil
	case nil:
		return nil, ErrMissingSegment
	default:
		return nil, ErrNotContainer
	}
}

func index(arr []any, part string) (int, error) {
	idx, err := strconv.Atoi(part)
	if err != nil || idx < 0 || idx >= len(arr) {
		return 0, ErrMissingSegment
	}
	return idx, nil
}
