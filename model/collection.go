package model

import (
	"github.com/memorm/memorm/predicate"
	"github.com/memorm/memorm/serializer"
)

// ModelCollection is an ordered, value-typed snapshot of model instances
// for bulk operations. It carries a meta slot for the source query's total
// match count (e.g. from a paginated findMany).
type ModelCollection struct {
	items []*Model
	total int
}

// NewCollection wraps items as a ModelCollection with total defaulting to
// len(items).
func NewCollection(items []*Model) *ModelCollection {
	return &ModelCollection{items: items, total: len(items)}
}

// WithTotal attaches a source query's total match count, overriding the
// default of len(items) (used when the collection is a paginated page).
func (c *ModelCollection) WithTotal(total int) *ModelCollection {
	c.total = total
	return c
}

// Total returns the collection's meta total (the filter-match count before
// pagination, for a paginated result; len(items) otherwise).
func (c *ModelCollection) Total() int { return c.total }

// Len returns the number of models in the collection.
func (c *ModelCollection) Len() int { return len(c.items) }

// At returns the model at index i.
func (c *ModelCollection) At(i int) *Model { return c.items[i] }

// All returns the underlying model slice.
func (c *ModelCollection) All() []*Model { return c.items }

// Filter returns a new collection containing only models for which keep
// returns true.
func (c *ModelCollection) Filter(keep func(*Model) bool) *ModelCollection {
	out := make([]*Model, 0, len(c.items))
	for _, m := range c.items {
		if keep(m) {
			out = append(out, m)
		}
	}
	return NewCollection(out)
}

// Slice returns the sub-collection [offset:offset+limit), clamped to
// bounds.
func (c *ModelCollection) Slice(offset, limit int) *ModelCollection {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.items) {
		return NewCollection(nil)
	}
	end := offset + limit
	if limit < 0 || end > len(c.items) {
		end = len(c.items)
	}
	out := make([]*Model, end-offset)
	copy(out, c.items[offset:end])
	return NewCollection(out)
}

// Sort returns a new collection ordered by terms, using each model's
// current attributes and breaking ties on id, matching the document
// store's sort semantics.
func (c *ModelCollection) Sort(terms []predicate.OrderTerm) *ModelCollection {
	recs := make([]map[string]any, len(c.items))
	byID := make(map[any]*Model, len(c.items))
	for i, m := range c.items {
		recs[i] = m.Attrs()
		byID[m.ID()] = m
	}
	predicate.SortRecords(recs, terms)
	sorted := make([]*Model, len(recs))
	for i, r := range recs {
		sorted[i] = byID[r["id"]]
	}
	return NewCollection(sorted)
}

// Concat returns a new collection with other's members appended.
func (c *ModelCollection) Concat(other *ModelCollection) *ModelCollection {
	out := make([]*Model, 0, len(c.items)+other.Len())
	out = append(out, c.items...)
	out = append(out, other.items...)
	return NewCollection(out)
}

// Push returns a new collection with m appended.
func (c *ModelCollection) Push(m *Model) *ModelCollection {
	out := make([]*Model, len(c.items)+1)
	copy(out, c.items)
	out[len(c.items)] = m
	return NewCollection(out)
}

// Includes reports whether m (by id, for saved models, or by identity for
// new ones) is a member of the collection.
func (c *ModelCollection) Includes(m *Model) bool {
	for _, item := range c.items {
		if item == m {
			return true
		}
		if !item.IsNew() && !m.IsNew() && item.collection == m.collection && item.ID() == m.ID() {
			return true
		}
	}
	return false
}

// Save persists every member, stopping at the first error.
func (c *ModelCollection) Save() error {
	for _, m := range c.items {
		if _, err := m.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Update applies patch to every member, stopping at the first error.
func (c *ModelCollection) Update(patch map[string]any) error {
	for _, m := range c.items {
		if _, err := m.Update(patch); err != nil {
			return err
		}
	}
	return nil
}

// Destroy destroys every member, stopping at the first error.
func (c *ModelCollection) Destroy() error {
	for _, m := range c.items {
		if err := m.Destroy(); err != nil {
			return err
		}
	}
	return nil
}

// Reload refreshes every member from its store, stopping at the first
// error.
func (c *ModelCollection) Reload() error {
	for _, m := range c.items {
		if err := m.Reload(); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON serializes every member's collection via the serializer registry,
// returning the aggregated (possibly side-loaded) result.
func (c *ModelCollection) ToJSON(opts ...serializer.Option) (any, error) {
	if len(c.items) == 0 {
		return []map[string]any{}, nil
	}
	collection := c.items[0].collection
	records := make([]map[string]any, len(c.items))
	for i, m := range c.items {
		records[i] = m.record
	}
	return c.items[0].serializer.SerializeRecords(collection, records, opts...)
}

// Serialize is an alias for ToJSON.
func (c *ModelCollection) Serialize(opts ...serializer.Option) (any, error) {
	return c.ToJSON(opts...)
}
