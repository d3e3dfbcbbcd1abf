package store

import (
	"fmt"

	"github.com/imdario/mergo"

	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/predicate"
)

// Result is the return value of a paginated read: the page of matching
// records plus the total match count before offset/limit/cursor were
// applied.
type Result struct {
	Records []map[string]any
	Total   int
}

// DbCollection is an id-indexed, in-memory document store for a single
// model collection. It owns no knowledge of relationships or factories —
// those live in the relationship and factory packages, layered on top.
type DbCollection struct {
	name     string
	identity identity.Manager
	records  map[any]map[string]any
	order    []any // insertion order of ids, for deterministic full scans
}

// New creates an empty DbCollection backed by the given identity manager.
func New(name string, idm identity.Manager) *DbCollection {
	return &DbCollection{
		name:     name,
		identity: idm,
		records:  make(map[any]map[string]any),
	}
}

// Insert stores a new record. If record["id"] is unset, one is minted from
// the identity manager; if set, it must not already exist.
func (c *DbCollection) Insert(record map[string]any) (map[string]any, error) {
	stored := cloneRecord(record)

	id, hasID := stored["id"]
	if !hasID || id == nil {
		id = c.identity.Next()
		stored["id"] = id
	} else {
		if c.identity.Has(id) {
			return nil, fmt.Errorf("%w: %v in collection %q", ErrDuplicateID, id, c.name)
		}
		c.identity.Set(id)
	}

	if _, exists := c.records[id]; exists {
		return nil, fmt.Errorf("%w: %v in collection %q", ErrDuplicateID, id, c.name)
	}

	c.records[id] = stored
	c.order = append(c.order, id)
	return cloneRecord(stored), nil
}

// Reserve consumes and returns the next id the identity manager would
// assign, without storing a record. The factory engine uses this to learn a
// model's id before evaluating id-dependent lazy attributes, then inserts
// the finished record with InsertWithID.
func (c *DbCollection) Reserve() any {
	return c.identity.Next()
}

// RecordID marks id as used so the identity manager never reissues it,
// without inserting a record.
func (c *DbCollection) RecordID(id any) {
	c.identity.Set(id)
}

// InsertWithID stores record under id, which must already be reserved (via
// Reserve or RecordID) or otherwise known not to collide; unlike Insert, it
// does not re-validate id against the identity manager.
func (c *DbCollection) InsertWithID(id any, record map[string]any) (map[string]any, error) {
	if _, exists := c.records[id]; exists {
		return nil, fmt.Errorf("%w: %v in collection %q", ErrDuplicateID, id, c.name)
	}
	stored := cloneRecord(record)
	stored["id"] = id
	c.records[id] = stored
	c.order = append(c.order, id)
	return cloneRecord(stored), nil
}

// InsertMany inserts every record, in order, stopping at the first error.
func (c *DbCollection) InsertMany(records []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		stored, err := c.Insert(r)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	return out, nil
}

// Find returns the record with the given id, or ErrNotFound.
func (c *DbCollection) Find(id any) (map[string]any, error) {
	rec, ok := c.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v in collection %q", ErrNotFound, id, c.name)
	}
	return cloneRecord(rec), nil
}

// FindBy returns the first record matching query, or ErrNotFound.
func (c *DbCollection) FindBy(rawQuery any) (map[string]any, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return nil, err
	}
	for _, id := range c.order {
		rec := c.records[id]
		if q.Matches(rec) {
			return cloneRecord(rec), nil
		}
	}
	return nil, fmt.Errorf("%w in collection %q", ErrNotFound, c.name)
}

// Exists reports whether any record matches query.
func (c *DbCollection) Exists(rawQuery any) (bool, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return false, err
	}
	for _, id := range c.order {
		if q.Matches(c.records[id]) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of records matching query.
func (c *DbCollection) Count(rawQuery any) (int, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range c.order {
		if q.Matches(c.records[id]) {
			n++
		}
	}
	return n, nil
}

// FindMany applies where+orderBy+offset/limit/cursor and returns the
// matching page plus the total match count before pagination.
func (c *DbCollection) FindMany(rawQuery any) (Result, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return Result{}, err
	}

	matched := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		rec := c.records[id]
		if q.Matches(rec) {
			matched = append(matched, cloneRecord(rec))
		}
	}

	total := len(matched)
	predicate.SortRecords(matched, q.OrderBy)

	if q.Cursor != nil && len(q.OrderBy) > 0 {
		matched = applyCursor(matched, q.OrderBy[0], q.Cursor)
	} else if q.Offset != nil {
		off := *q.Offset
		if off < 0 {
			off = 0
		}
		if off >= len(matched) {
			matched = nil
		} else {
			matched = matched[off:]
		}
	}

	if q.Limit != nil && *q.Limit >= 0 && *q.Limit < len(matched) {
		matched = matched[:*q.Limit]
	}

	return Result{Records: matched, Total: total}, nil
}

// All returns every record in insertion order.
func (c *DbCollection) All() []map[string]any {
	out := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneRecord(c.records[id]))
	}
	return out
}

// At returns the record at the given insertion-order position.
func (c *DbCollection) At(index int) (map[string]any, error) {
	if index < 0 || index >= len(c.order) {
		return nil, fmt.Errorf("%w: index %d out of range in collection %q", ErrNotFound, index, c.name)
	}
	return cloneRecord(c.records[c.order[index]]), nil
}

// First returns the first record by insertion order, or ErrNotFound if empty.
func (c *DbCollection) First() (map[string]any, error) { return c.At(0) }

// Last returns the last record by insertion order, or ErrNotFound if empty.
func (c *DbCollection) Last() (map[string]any, error) { return c.At(len(c.order) - 1) }

// Size returns the number of records in the collection.
func (c *DbCollection) Size() int { return len(c.order) }

// IsEmpty reports whether the collection holds no records.
func (c *DbCollection) IsEmpty() bool { return len(c.order) == 0 }

// Update applies patch to the record with the given id and returns the
// updated snapshot. Nested map-valued attributes are merged with
// override-wins semantics via mergo rather than replaced wholesale.
func (c *DbCollection) Update(id any, patch map[string]any) (map[string]any, error) {
	rec, ok := c.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v in collection %q", ErrNotFound, id, c.name)
	}
	merged, err := applyPatch(rec, patch)
	if err != nil {
		return nil, err
	}
	merged["id"] = id
	c.records[id] = merged
	return cloneRecord(merged), nil
}

// UpdateMany applies patch to every record matching query, bounded by
// limit/offset/orderBy, and returns the updated snapshots.
func (c *DbCollection) UpdateMany(rawQuery any, patch map[string]any) ([]map[string]any, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return nil, err
	}

	matchedIDs := make([]any, 0, len(c.order))
	for _, id := range c.order {
		if q.Matches(c.records[id]) {
			matchedIDs = append(matchedIDs, id)
		}
	}

	if len(q.OrderBy) > 0 {
		recs := make([]map[string]any, len(matchedIDs))
		for i, id := range matchedIDs {
			recs[i] = c.records[id]
		}
		predicate.SortRecords(recs, q.OrderBy)
		for i, r := range recs {
			matchedIDs[i] = r["id"]
		}
	}

	if q.Offset != nil {
		off := *q.Offset
		if off < 0 {
			off = 0
		}
		if off >= len(matchedIDs) {
			matchedIDs = nil
		} else {
			matchedIDs = matchedIDs[off:]
		}
	}
	if q.Limit != nil && *q.Limit >= 0 && *q.Limit < len(matchedIDs) {
		matchedIDs = matchedIDs[:*q.Limit]
	}

	out := make([]map[string]any, 0, len(matchedIDs))
	for _, id := range matchedIDs {
		updated, err := c.Update(id, patch)
		if err != nil {
			return out, err
		}
		out = append(out, updated)
	}
	return out, nil
}

// Delete removes the record with the given id.
func (c *DbCollection) Delete(id any) error {
	if _, ok := c.records[id]; !ok {
		return fmt.Errorf("%w: %v in collection %q", ErrNotFound, id, c.name)
	}
	delete(c.records, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteMany removes every record matching query and returns how many were
// removed.
func (c *DbCollection) DeleteMany(rawQuery any) (int, error) {
	q, err := predicate.Normalize(rawQuery)
	if err != nil {
		return 0, err
	}
	var toDelete []any
	for _, id := range c.order {
		if q.Matches(c.records[id]) {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		_ = c.Delete(id)
	}
	return len(toDelete), nil
}

// Clear empties the collection and resets its identity manager, per the
// schema-level invariant that identity managers reset when the database
// they belong to is emptied.
func (c *DbCollection) Clear() {
	c.records = make(map[any]map[string]any)
	c.order = nil
	c.identity.Reset()
}

func applyPatch(existing, patch map[string]any) (map[string]any, error) {
	merged := cloneRecord(existing)
	for k, v := range patch {
		if nested, ok := v.(map[string]any); ok {
			base, _ := merged[k].(map[string]any)
			base = cloneRecord(base)
			if err := mergo.Merge(&base, nested, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("memorm: store: merging attribute %q: %w", k, err)
			}
			merged[k] = base
			continue
		}
		merged[k] = v
	}
	return merged, nil
}

func cloneRecord(rec map[string]any) map[string]any {
	if rec == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// applyCursor skips every record up to and including the one whose ordered
// field equals the cursor value, implementing keyset pagination on the
// first orderBy term.
func applyCursor(records []map[string]any, term predicate.OrderTerm, cursor map[string]any) []map[string]any {
	boundary, ok := cursor[term.Field]
	if !ok {
		return records
	}
	for i, rec := range records {
		if rec[term.Field] == boundary {
			return records[i+1:]
		}
	}
	return records
}
