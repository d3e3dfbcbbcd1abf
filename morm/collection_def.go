// Package morm is the composition root: it binds template, relationship,
// factory, and serializer configuration for every collection into one live
// Schema, the way the teacher's orm.NewClient binds a driver and dialect
// into a ready-to-use Client.
package morm

import (
	"github.com/memorm/memorm/factory"
	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/model"
	"github.com/memorm/memorm/schema"
	"github.com/memorm/memorm/serializer"
)

// FactoryDef is a factory's blueprint: base attributes, named traits, and
// an after-create hook. It is inert configuration; Schema setup binds it to
// a live store, relationship engine, and serializer to produce a
// *factory.Factory.
type FactoryDef struct {
	Attributes  map[string]any
	Traits      map[string]factory.Trait
	AfterCreate func(*model.Model) error
}

// FactoryOption configures a FactoryDef at construction time.
type FactoryOption func(*FactoryDef)

// WithFactoryAttributes sets the factory's base attributes record.
func WithFactoryAttributes(attrs map[string]any) FactoryOption {
	return func(d *FactoryDef) { d.Attributes = attrs }
}

// WithFactoryTrait registers a named trait.
func WithFactoryTrait(name string, t factory.Trait) FactoryOption {
	return func(d *FactoryDef) {
		if d.Traits == nil {
			d.Traits = map[string]factory.Trait{}
		}
		d.Traits[name] = t
	}
}

// WithFactoryAfterCreate attaches the factory-level after-create hook.
func WithFactoryAfterCreate(fn func(*model.Model) error) FactoryOption {
	return func(d *FactoryDef) { d.AfterCreate = fn }
}

// NewFactory builds a FactoryDef from options.
func NewFactory(opts ...FactoryOption) FactoryDef {
	d := FactoryDef{Attributes: map[string]any{}, Traits: map[string]factory.Trait{}}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// CollectionConfig binds one collection's template, relation descriptors,
// factory definition, identity manager, and default serializer config. It
// is a plain value; Schema setup turns it into a live Collection facade.
type CollectionConfig struct {
	Template   *schema.Template
	Relations  map[string]schema.Relation
	Factory    FactoryDef
	Identity   identity.Manager
	Serializer *serializer.Config
}

// CollectionOption configures a CollectionConfig at construction time.
type CollectionOption func(*CollectionConfig)

// WithRelation declares a relation named name on the collection.
func WithRelation(name string, rel schema.Relation) CollectionOption {
	return func(c *CollectionConfig) {
		if c.Relations == nil {
			c.Relations = map[string]schema.Relation{}
		}
		c.Relations[name] = rel
	}
}

// WithCollectionFactory attaches a factory definition to the collection.
func WithCollectionFactory(f FactoryDef) CollectionOption {
	return func(c *CollectionConfig) { c.Factory = f }
}

// WithCollectionIdentity overrides the schema-wide default identity
// manager for this collection only.
func WithCollectionIdentity(m identity.Manager) CollectionOption {
	return func(c *CollectionConfig) { c.Identity = m }
}

// WithCollectionSerializer overrides the default serializer config derived
// for this collection (otherwise serializer.New() is used).
func WithCollectionSerializer(cfg serializer.Config) CollectionOption {
	return func(c *CollectionConfig) { c.Serializer = &cfg }
}

// NewCollection builds a CollectionConfig for tmpl.
func NewCollection(tmpl *schema.Template, opts ...CollectionOption) CollectionConfig {
	c := CollectionConfig{Template: tmpl, Relations: map[string]schema.Relation{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
