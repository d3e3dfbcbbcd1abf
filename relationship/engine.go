package relationship

import (
	"fmt"

	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/schema"
)

// Engine performs bidirectional FK synchronization over a database
// registry, given a resolved relation Registry. It operates only on
// already-persisted records; deferring updates for not-yet-saved models is
// the model package's responsibility.
//
// Relation.Target is read here as a registered collection name (what
// dbreg.DB.Collection expects), not a template's singular model name; morm
// translates template names to collection names when it builds the
// Registry at schema setup time.
type Engine struct {
	registry *Registry
	db       *dbreg.DB
}

// NewEngine creates a relationship engine over db using the resolved
// relations in registry.
func NewEngine(registry *Registry, db *dbreg.DB) *Engine {
	return &Engine{registry: registry, db: db}
}

func (e *Engine) relation(collection, name string) (*Resolved, error) {
	rel, ok := e.registry.Get(collection, name)
	if !ok {
		return nil, fmt.Errorf("memorm: relationship: unknown relation %q on %q", name, collection)
	}
	return rel, nil
}

func (e *Engine) get(collection string, id any) (map[string]any, error) {
	s := e.db.Collection(collection)
	if s == nil {
		return nil, fmt.Errorf("memorm: relationship: unknown collection %q", collection)
	}
	return s.Find(id)
}

func (e *Engine) patch(collection string, id any, fields map[string]any) error {
	s := e.db.Collection(collection)
	if s == nil {
		return fmt.Errorf("memorm: relationship: unknown collection %q", collection)
	}
	_, err := s.Update(id, fields)
	return err
}

// LinkBelongsTo sets A(collection,id).<relName> to targetID, writing the FK
// and, if an inverse exists, appending A's id to the target's inverse
// has-many list while removing it from any previous owner's list.
func (e *Engine) LinkBelongsTo(collection string, id any, relName string, targetID any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	oldTarget := rec[rel.ForeignKey]

	if err := e.patch(collection, id, map[string]any{rel.ForeignKey: targetID}); err != nil {
		return err
	}
	if rel.Inverse == "" {
		return nil
	}
	if oldTarget != nil && oldTarget != targetID {
		if err := e.removeFromHasManyList(rel.Target, oldTarget, rel.Inverse, id); err != nil {
			return err
		}
	}
	return e.appendToHasManyList(rel.Target, targetID, rel.Inverse, id)
}

// UnlinkBelongsTo clears A(collection,id).<relName>, removing A's id from
// the prior target's inverse has-many list.
func (e *Engine) UnlinkBelongsTo(collection string, id any, relName string) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	oldTarget := rec[rel.ForeignKey]
	if err := e.patch(collection, id, map[string]any{rel.ForeignKey: nil}); err != nil {
		return err
	}
	if rel.Inverse == "" || oldTarget == nil {
		return nil
	}
	return e.removeFromHasManyList(rel.Target, oldTarget, rel.Inverse, id)
}

// AppendHasMany appends targetID to A(collection,id).<relName> (no-op if
// already present) and, if an inverse exists, sets the target's inverse
// belongs-to FK to id, clearing any prior owner.
func (e *Engine) AppendHasMany(collection string, id any, relName string, targetID any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	if err := e.appendToHasManyList(collection, id, relName, targetID); err != nil {
		return err
	}
	if rel.Inverse == "" {
		return nil
	}
	invRel, err := e.relation(rel.Target, rel.Inverse)
	if err != nil {
		return err
	}
	targetRec, err := e.get(rel.Target, targetID)
	if err != nil {
		return err
	}
	priorOwner := targetRec[invRel.ForeignKey]
	if priorOwner != nil && priorOwner != id {
		if err := e.removeFromHasManyList(collection, priorOwner, relName, targetID); err != nil {
			return err
		}
	}
	return e.patch(rel.Target, targetID, map[string]any{invRel.ForeignKey: id})
}

// RemoveHasMany removes targetID from A(collection,id).<relName> and, if an
// inverse exists, clears the target's inverse belongs-to FK.
func (e *Engine) RemoveHasMany(collection string, id any, relName string, targetID any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	if err := e.removeFromHasManyList(collection, id, relName, targetID); err != nil {
		return err
	}
	if rel.Inverse == "" {
		return nil
	}
	invRel, err := e.relation(rel.Target, rel.Inverse)
	if err != nil {
		return err
	}
	return e.patch(rel.Target, targetID, map[string]any{invRel.ForeignKey: nil})
}

// ReplaceHasMany replaces A(collection,id).<relName> with targetIDs
// (de-duplicated, insertion order). Removed members have their inverse FK
// cleared; added members have their inverse FK set to id, clearing any
// prior owner.
func (e *Engine) ReplaceHasMany(collection string, id any, relName string, targetIDs []any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	current := toIDList(rec[rel.ForeignKey])
	next := dedupe(targetIDs)

	removed := diff(current, next)
	added := diff(next, current)

	for _, targetID := range removed {
		if err := e.RemoveHasMany(collection, id, relName, targetID); err != nil {
			return err
		}
	}
	for _, targetID := range added {
		if err := e.AppendHasMany(collection, id, relName, targetID); err != nil {
			return err
		}
	}
	return nil
}

// ClearHasMany empties A(collection,id).<relName>, clearing every member's
// inverse FK.
func (e *Engine) ClearHasMany(collection string, id any, relName string) error {
	return e.ReplaceHasMany(collection, id, relName, nil)
}

// Destroy removes every trace of A(collection,id) from its related
// records: for each belongs-to relation, removes id from the target's
// inverse list; for each has-many relation, clears each member's inverse
// belongs-to FK. It does not remove the record itself.
func (e *Engine) Destroy(collection string, id any) error {
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	for name, rel := range e.registry.For(collection) {
		if rel.Inverse == "" {
			continue
		}
		switch rel.Kind {
		case schema.BelongsTo:
			target := rec[rel.ForeignKey]
			if target == nil {
				continue
			}
			if err := e.removeFromHasManyList(rel.Target, target, rel.Inverse, id); err != nil {
				return err
			}
		case schema.HasMany:
			invRel, err := e.relation(rel.Target, rel.Inverse)
			if err != nil {
				return err
			}
			for _, targetID := range toIDList(rec[rel.ForeignKey]) {
				if err := e.patch(rel.Target, targetID, map[string]any{invRel.ForeignKey: nil}); err != nil {
					return err
				}
			}
		}
		_ = name
	}
	return nil
}

func (e *Engine) appendToHasManyList(collection string, id any, relName string, targetID any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	list := toIDList(rec[rel.ForeignKey])
	for _, v := range list {
		if v == targetID {
			return nil
		}
	}
	list = append(list, targetID)
	return e.patch(collection, id, map[string]any{rel.ForeignKey: list})
}

func (e *Engine) removeFromHasManyList(collection string, id any, relName string, targetID any) error {
	rel, err := e.relation(collection, relName)
	if err != nil {
		return err
	}
	rec, err := e.get(collection, id)
	if err != nil {
		return err
	}
	list := toIDList(rec[rel.ForeignKey])
	out := make([]any, 0, len(list))
	for _, v := range list {
		if v != targetID {
			out = append(out, v)
		}
	}
	return e.patch(collection, id, map[string]any{rel.ForeignKey: out})
}

func toIDList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case nil:
		return nil
	default:
		return nil
	}
}

func dedupe(ids []any) []any {
	seen := make(map[any]bool, len(ids))
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// diff returns the elements of a not present in b, preserving a's order.
func diff(a, b []any) []any {
	inB := make(map[any]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []any
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}
	return out
}
