package annotation

import "sync"

// Collection is an ordered, concurrency-safe set of annotations.
//
// Insertion order is the tie-break for display and feedback export, so the
// collection never reorders entries. Annotations are immutable once added
// except for author renames and wholesale removal.
type Collection struct {
	mu    sync.Mutex
	items []Annotation
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends an annotation, preserving insertion order.
func (c *Collection) Add(a Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, a)
}

// Remove deletes the annotation with the given ID.
// Returns false if no annotation matched.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, a := range c.items {
		if a.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Rename rewrites the author on every annotation. Used when the reviewer
// changes their display identity mid-session.
func (c *Collection) Rename(author string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Author = author
	}
}

// Merge appends each incoming annotation whose key is not already present,
// in incoming order, and returns how many were appended. The duplicate
// check and every append happen under one lock, so two concurrent merges
// of the same payload cannot both pass the check and double up entries.
func (c *Collection) Merge(incoming []Annotation, key func(Annotation) any) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[any]struct{}, len(c.items)+len(incoming))
	for _, a := range c.items {
		seen[key(a)] = struct{}{}
	}

	added := 0
	for _, a := range incoming {
		k := key(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		c.items = append(c.items, a)
		added++
	}
	return added
}

// ReplaceAll swaps the collection contents for the given annotations.
// The caller's slice is copied, not retained.
func (c *Collection) ReplaceAll(items []Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]Annotation, len(items))
	copy(c.items, items)
}

// List returns a copy of the annotations in insertion order.
func (c *Collection) List() []Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Annotation, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of annotations held.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
