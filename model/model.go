// Package model implements Model and ModelCollection: live wrappers over
// document-store records that expose attribute and relationship accessors
// and lifecycle operations (save/update/destroy/reload/link/unlink),
// deferring relationship writes until a new model is saved. Grounded on the
// teacher's orm.Model query-result wrapper, replacing SQL re-fetching with
// direct dbreg/relationship calls.
package model

import (
	"errors"
	"fmt"

	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/schema"
	"github.com/memorm/memorm/serializer"
)

// ErrDestroyed is returned by operations on a model that has already been
// destroyed.
var ErrDestroyed = errors.New("memorm: model: instance has been destroyed")

// pendingOp is a relationship write captured on a new model, replayed
// against the relationship engine once Save assigns an id.
type pendingOp func(engine *relationship.Engine, id any) error

// Model is a live wrapper around one record in one collection's store.
type Model struct {
	collection string
	id         any
	record     map[string]any
	db         *dbreg.DB
	relations  *relationship.Registry
	engine     *relationship.Engine
	serializer *serializer.Registry
	pending    []pendingOp
	destroyed  bool
}

// New constructs an unsaved ("new") model from attrs. It is not persisted
// until Save is called.
func New(collection string, attrs map[string]any, db *dbreg.DB, relations *relationship.Registry, engine *relationship.Engine, ser *serializer.Registry) *Model {
	record := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == "id" {
			continue
		}
		record[k] = v
	}
	return &Model{collection: collection, record: record, db: db, relations: relations, engine: engine, serializer: ser}
}

// Wrap constructs a saved model around an existing record.
func Wrap(collection string, record map[string]any, db *dbreg.DB, relations *relationship.Registry, engine *relationship.Engine, ser *serializer.Registry) *Model {
	return &Model{collection: collection, id: record["id"], record: record, db: db, relations: relations, engine: engine, serializer: ser}
}

// Collection returns the name of the collection this model belongs to.
func (m *Model) Collection() string { return m.collection }

// ID returns the model's id, or nil if it is new.
func (m *Model) ID() any { return m.id }

// IsNew reports whether the model has not yet been persisted.
func (m *Model) IsNew() bool { return m.id == nil }

// Get returns the attribute value for field.
func (m *Model) Get(field string) any { return m.record[field] }

// Attrs returns a shallow copy of the model's backing record.
func (m *Model) Attrs() map[string]any {
	out := make(map[string]any, len(m.record))
	for k, v := range m.record {
		out[k] = v
	}
	return out
}

// Save persists the model: if new, inserts it and flushes any pending
// relationship writes; if already saved, re-persists its current
// attributes.
func (m *Model) Save() (*Model, error) {
	if m.destroyed {
		return nil, ErrDestroyed
	}
	store := m.db.Collection(m.collection)
	if store == nil {
		return nil, fmt.Errorf("memorm: model: unknown collection %q", m.collection)
	}

	if m.IsNew() {
		stored, err := store.Insert(m.record)
		if err != nil {
			return nil, err
		}
		m.record = stored
		m.id = stored["id"]
		for _, op := range m.pending {
			if err := op(m.engine, m.id); err != nil {
				return nil, err
			}
		}
		m.pending = nil
		return m.reloadFrom(store)
	}

	stored, err := store.Update(m.id, m.record)
	if err != nil {
		return nil, err
	}
	m.record = stored
	return m, nil
}

func (m *Model) reloadFrom(store interface {
	Find(id any) (map[string]any, error)
}) (*Model, error) {
	rec, err := store.Find(m.id)
	if err != nil {
		return nil, err
	}
	m.record = rec
	return m, nil
}

// Update merges attribute and relationship fields from patch and persists
// immediately, cascading inverse relationship updates.
func (m *Model) Update(patch map[string]any) (*Model, error) {
	if m.destroyed {
		return nil, ErrDestroyed
	}
	attrs := map[string]any{}
	for field, value := range patch {
		if rel, ok := m.relations.Get(m.collection, field); ok {
			if err := m.applyRelationField(rel, field, value); err != nil {
				return nil, err
			}
			continue
		}
		attrs[field] = value
	}
	// A relation value wins over an explicit foreign key for the same
	// relation given in the same patch.
	for field := range patch {
		if rel, ok := m.relations.Get(m.collection, field); ok {
			delete(attrs, rel.ForeignKey)
		}
	}
	for k, v := range attrs {
		m.record[k] = v
	}
	return m.Save()
}

// Destroy removes the model from its store, clears inverse links in every
// related target, and resets the model to "new".
func (m *Model) Destroy() error {
	if m.destroyed {
		return ErrDestroyed
	}
	if m.IsNew() {
		m.destroyed = true
		return nil
	}
	if err := m.engine.Destroy(m.collection, m.id); err != nil {
		return err
	}
	store := m.db.Collection(m.collection)
	if err := store.Delete(m.id); err != nil {
		return err
	}
	m.id = nil
	m.destroyed = true
	return nil
}

// Reload replaces the in-memory attributes with the stored record.
func (m *Model) Reload() error {
	if m.IsNew() {
		return nil
	}
	store := m.db.Collection(m.collection)
	rec, err := store.Find(m.id)
	if err != nil {
		return err
	}
	m.record = rec
	return nil
}

// Link sets relName to target: for belongs-to this assigns the relation;
// for has-many, target is appended (no duplicate) rather than replacing
// the whole list. target may be a *Model, a raw id, or nil (belongs-to
// clear).
func (m *Model) Link(relName string, target any) error {
	rel, ok := m.relations.Get(m.collection, relName)
	if !ok {
		return fmt.Errorf("memorm: model: unknown relation %q on %q", relName, m.collection)
	}
	return m.applyRelationField(rel, relName, target)
}

// LinkMany replaces a has-many relation's full member list.
func (m *Model) LinkMany(relName string, targets []any) error {
	rel, ok := m.relations.Get(m.collection, relName)
	if !ok {
		return fmt.Errorf("memorm: model: unknown relation %q on %q", relName, m.collection)
	}
	return m.applyRelationField(rel, relName, targets)
}

// Unlink clears a belongs-to relation, or removes one member (if target is
// given) or clears the whole list (if not) from a has-many relation.
func (m *Model) Unlink(relName string, target ...any) error {
	rel, ok := m.relations.Get(m.collection, relName)
	if !ok {
		return fmt.Errorf("memorm: model: unknown relation %q on %q", relName, m.collection)
	}
	if rel.Kind == schema.BelongsTo {
		return m.applyRelationField(rel, relName, nil)
	}
	if len(target) == 0 {
		return m.applyRelationField(rel, relName, []any{})
	}
	id, err := resolveID(target[0])
	if err != nil {
		return err
	}
	if m.IsNew() {
		m.pending = append(m.pending, func(engine *relationship.Engine, selfID any) error {
			return engine.RemoveHasMany(m.collection, selfID, relName, id)
		})
		return nil
	}
	if err := m.engine.RemoveHasMany(m.collection, m.id, relName, id); err != nil {
		return err
	}
	return m.Reload()
}

// Related reads a relationship without binding: a belongs-to returns
// (*Model, nil) or (nil, nil) if unset; a has-many returns a *ModelCollection
// (possibly empty).
func (m *Model) Related(relName string) (any, error) {
	rel, ok := m.relations.Get(m.collection, relName)
	if !ok {
		return nil, fmt.Errorf("memorm: model: unknown relation %q on %q", relName, m.collection)
	}
	switch rel.Kind {
	case schema.BelongsTo:
		id := m.record[rel.ForeignKey]
		if id == nil {
			return (*Model)(nil), nil
		}
		rec, err := m.db.Collection(rel.Target).Find(id)
		if err != nil {
			return (*Model)(nil), nil
		}
		return Wrap(rel.Target, rec, m.db, m.relations, m.engine, m.serializer), nil
	default: // hasMany
		ids := toIDList(m.record[rel.ForeignKey])
		items := make([]*Model, 0, len(ids))
		for _, id := range ids {
			rec, err := m.db.Collection(rel.Target).Find(id)
			if err != nil {
				continue
			}
			items = append(items, Wrap(rel.Target, rec, m.db, m.relations, m.engine, m.serializer))
		}
		return NewCollection(items), nil
	}
}

// ToJSON serializes the model via its collection's serializer, applying
// any per-call overrides.
func (m *Model) ToJSON(opts ...serializer.Option) (any, error) {
	return m.serializer.SerializeRecord(m.collection, m.record, opts...)
}

// Serialize is an alias for ToJSON, matching the facade vocabulary used
// elsewhere in the collection API.
func (m *Model) Serialize(opts ...serializer.Option) (any, error) {
	return m.ToJSON(opts...)
}

func (m *Model) applyRelationField(rel *relationship.Resolved, relName string, value any) error {
	targets := []any{value}
	if list, ok := value.([]any); ok {
		targets = list
	}
	for _, v := range targets {
		if t, ok := v.(*Model); ok && t != nil && t.collection != rel.Target {
			return fmt.Errorf("%w: relation %q on %q targets %q, got a %q model", relationship.ErrTemplateMismatch, relName, m.collection, rel.Target, t.collection)
		}
	}
	switch rel.Kind {
	case schema.BelongsTo:
		id, err := resolveID(value)
		if err != nil {
			return err
		}
		m.record[rel.ForeignKey] = id
		if m.IsNew() {
			if id != nil {
				m.pending = append(m.pending, func(engine *relationship.Engine, selfID any) error {
					return engine.LinkBelongsTo(m.collection, selfID, relName, id)
				})
			}
			return nil
		}
		if id == nil {
			return m.engine.UnlinkBelongsTo(m.collection, m.id, relName)
		}
		if err := m.engine.LinkBelongsTo(m.collection, m.id, relName, id); err != nil {
			return err
		}
		return m.Reload()
	default: // hasMany
		switch v := value.(type) {
		case []any:
			ids, err := resolveIDs(v)
			if err != nil {
				return err
			}
			if m.IsNew() {
				// Leave the FK unset until save: ReplaceHasMany diffs
				// against the stored record, and a pre-populated FK would
				// make the post-save diff empty, skipping inverse links.
				m.pending = append(m.pending, func(engine *relationship.Engine, selfID any) error {
					return engine.ReplaceHasMany(m.collection, selfID, relName, ids)
				})
				return nil
			}
			m.record[rel.ForeignKey] = ids
			if err := m.engine.ReplaceHasMany(m.collection, m.id, relName, ids); err != nil {
				return err
			}
			return m.Reload()
		default:
			id, err := resolveID(value)
			if err != nil {
				return err
			}
			if id == nil {
				return nil
			}
			if m.IsNew() {
				m.pending = append(m.pending, func(engine *relationship.Engine, selfID any) error {
					return engine.AppendHasMany(m.collection, selfID, relName, id)
				})
				return nil
			}
			if err := m.engine.AppendHasMany(m.collection, m.id, relName, id); err != nil {
				return err
			}
			return m.Reload()
		}
	}
}

func resolveID(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Model:
		if v == nil {
			return nil, nil
		}
		if v.IsNew() {
			return nil, relationship.ErrTargetNotSaved
		}
		return v.ID(), nil
	default:
		return v, nil
	}
}

func resolveIDs(values []any) ([]any, error) {
	out := make([]any, 0, len(values))
	for _, v := range values {
		id, err := resolveID(v)
		if err != nil {
			return nil, err
		}
		if id != nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func toIDList(v any) []any {
	list, _ := v.([]any)
	return list
}
