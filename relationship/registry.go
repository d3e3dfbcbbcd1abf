// Package relationship implements bidirectional foreign-key synchronization
// between belongs-to and has-many relations: inverse auto-detection at
// setup time, and the link/unlink/replace/destroy operations that keep both
// sides of a relation consistent. Grounded on the teacher's
// schema.ValidateRelation candidate-scanning style, generalized from
// SQL foreign-key validation to in-memory FK-list synchronization.
package relationship

import (
	"errors"
	"fmt"
	"sort"

	"github.com/memorm/memorm/schema"
)

var (
	// ErrUnknownTarget is returned when a relation names a target
	// collection that was never registered.
	ErrUnknownTarget = errors.New("memorm: relationship: unknown target collection")
	// ErrNoInverse is returned when inverse auto-detection finds no
	// candidate relation pointing back at the owner.
	ErrNoInverse = errors.New("memorm: relationship: no inverse candidate found")
	// ErrAmbiguousInverse is returned when inverse auto-detection finds
	// more than one candidate relation pointing back at the owner.
	ErrAmbiguousInverse = errors.New("memorm: relationship: ambiguous inverse candidates")
	// ErrNamedInverseNotFound is returned when an explicit inverse name
	// does not match any relation on the target collection.
	ErrNamedInverseNotFound = errors.New("memorm: relationship: named inverse not found")
	// ErrTargetNotSaved is returned when linking to a model that has not
	// been persisted yet.
	ErrTargetNotSaved = errors.New("memorm: relationship: target model is not saved")
	// ErrTemplateMismatch is returned when a model of the wrong template
	// is linked to a relation.
	ErrTemplateMismatch = errors.New("memorm: relationship: model template mismatch")
)

// Resolved pairs a relation definition with its resolved inverse relation
// name on the target collection ("" if the relation has no inverse).
type Resolved struct {
	Name string
	schema.Relation
	Inverse string
}

// Registry holds every collection's relation definitions and, once
// Resolve has run, their resolved inverses.
type Registry struct {
	byCollection map[string]map[string]*Resolved
}

// NewRegistry creates an empty relation registry.
func NewRegistry() *Registry {
	return &Registry{byCollection: make(map[string]map[string]*Resolved)}
}

// Define registers a relation named name on collection. Call Resolve once
// every collection's relations have been defined.
func (r *Registry) Define(collection, name string, rel schema.Relation) {
	if r.byCollection[collection] == nil {
		r.byCollection[collection] = make(map[string]*Resolved)
	}
	r.byCollection[collection][name] = &Resolved{Name: name, Relation: rel}
}

// EnsureCollection registers collection with no relations, so Resolve can
// validate relations targeting a collection that legitimately has none of
// its own.
func (r *Registry) EnsureCollection(collection string) {
	if r.byCollection[collection] == nil {
		r.byCollection[collection] = make(map[string]*Resolved)
	}
}

// Resolve validates every relation's target collection exists and computes
// inverse relation names, auto-detecting where the relation's InverseMode
// is schema.InverseAuto.
func (r *Registry) Resolve() error {
	for collection, rels := range r.byCollection {
		names := make([]string, 0, len(rels))
		for name := range rels {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			res := rels[name]
			if _, ok := r.byCollection[res.Target]; !ok {
				return fmt.Errorf("%w: %s.%s -> %q", ErrUnknownTarget, collection, name, res.Target)
			}

			switch res.InverseMode {
			case schema.InverseNone:
				res.Inverse = ""
			case schema.InverseNamed:
				if _, ok := r.byCollection[res.Target][res.InverseName]; !ok {
					return fmt.Errorf("%w: %q on %q for %s.%s", ErrNamedInverseNotFound, res.InverseName, res.Target, collection, name)
				}
				res.Inverse = res.InverseName
			default:
				var candidates []string
				for otherName, other := range r.byCollection[res.Target] {
					if other.Target == collection {
						candidates = append(candidates, otherName)
					}
				}
				sort.Strings(candidates)
				switch len(candidates) {
				case 0:
					return fmt.Errorf("%w: %s.%s targets %q", ErrNoInverse, collection, name, res.Target)
				case 1:
					res.Inverse = candidates[0]
				default:
					return fmt.Errorf("%w: %s.%s targets %q, candidates %v", ErrAmbiguousInverse, collection, name, res.Target, candidates)
				}
			}
		}
	}
	return nil
}

// Get returns the resolved relation named name on collection.
func (r *Registry) Get(collection, name string) (*Resolved, bool) {
	rels := r.byCollection[collection]
	if rels == nil {
		return nil, false
	}
	rel, ok := rels[name]
	return rel, ok
}

// For returns every resolved relation defined on collection.
func (r *Registry) For(collection string) map[string]*Resolved {
	return r.byCollection[collection]
}
