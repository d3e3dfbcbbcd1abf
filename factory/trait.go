package factory

import "github.com/memorm/memorm/model"

// Trait is a named, partial attributes record applied on top of a
// factory's base attributes when the trait's name is passed to Build, plus
// an optional hook run after the owning model (and its associations) are
// created.
type Trait struct {
	attributes  map[string]any
	afterCreate func(*model.Model) error
}

// TraitOption configures a Trait at construction time.
type TraitOption func(*Trait)

// WithTraitAfterCreate attaches a hook run after a model built with this
// trait is created, after the factory's own afterCreate.
func WithTraitAfterCreate(fn func(*model.Model) error) TraitOption {
	return func(t *Trait) { t.afterCreate = fn }
}

// NewTrait builds a Trait from a partial attributes record (constants,
// AttrFuncs, or Associations).
func NewTrait(attributes map[string]any, opts ...TraitOption) Trait {
	t := Trait{attributes: attributes}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
