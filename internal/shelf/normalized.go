package shelf

// Normalized holds entities indexed by id plus the order the ids arrived in.
// Every id in IDs is expected to have an entry in ByID, but nothing enforces
// it, and IDs may repeat.
type Normalized struct {
	ByID map[int]BookResource `json:"byId"`
	IDs  []int                `json:"ids"`
}

// NewNormalized returns an empty resource with a non-nil map.
func NewNormalized() Normalized {
	return Normalized{ByID: make(map[int]BookResource), IDs: []int{}}
}

// NormalizeBooks keys books by their backend id.
func NormalizeBooks(books []BookResource) Normalized {
	out := NewNormalized()
	for _, b := range books {
		out.ByID[b.ID] = b
		out.IDs = append(out.IDs, b.ID)
	}
	return out
}

// NormalizeSuggestions keys suggestions by their position in the response.
// Suggestions have no stable id, so index 0 here is unrelated to book id 0;
// they only stay apart because they live in their own collection.
func NormalizeSuggestions(books []Book) Normalized {
	out := NewNormalized()
	for idx, b := range books {
		out.ByID[idx] = b.WithID(idx)
		out.IDs = append(out.IDs, idx)
	}
	return out
}

// Len reports the number of ids, duplicates included.
func (n Normalized) Len() int {
	return len(n.IDs)
}

// Values returns the entries in id order. Repeated ids appear once, and ids
// with no entry are skipped.
func (n Normalized) Values() []BookResource {
	if len(n.IDs) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(n.IDs))
	out := make([]BookResource, 0, len(n.IDs))
	for _, id := range n.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b, ok := n.ByID[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Clone returns a deep copy. A nil map is replaced with an empty one.
func (n Normalized) Clone() Normalized {
	dup := Normalized{
		ByID: make(map[int]BookResource, len(n.ByID)),
		IDs:  make([]int, len(n.IDs)),
	}
	for k, v := range n.ByID {
		dup.ByID[k] = v
	}
	copy(dup.IDs, n.IDs)
	return dup
}
