package morm

import (
	"fmt"
	"sort"

	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/factory"
	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/logger"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/serializer"
)

// SeedFunc populates a freshly built Schema with data, typically by calling
// Create/CreateMany on one or more of its collections.
type SeedFunc func(*Schema) error

type seedEntry struct {
	fn        SeedFunc
	isDefault bool
}

// Schema is a fully wired set of collections: document stores, relation
// definitions with resolved inverses, a serializer registry, and one
// factory per collection, all cross-referencing each other the way the
// teacher's Client binds one dialect and connection across every model.
type Schema struct {
	db          *dbreg.DB
	relations   *relationship.Registry
	engine      *relationship.Engine
	serializer  *serializer.Registry
	factories   *factory.Registry
	collections map[string]*Collection
	defaultIdm  identity.Manager
	logger      logger.Logger

	seeds     map[string]seedEntry
	seedOrder []string
}

// SchemaOption configures Schema construction.
type SchemaOption func(*schemaBuild)

type schemaBuild struct {
	defaultIdmFactory func() identity.Manager
	logger            logger.Logger
	seeds             map[string]seedEntry
	seedOrder         []string
}

// WithDefaultIdentityManager sets the identity manager factory used for any
// collection that does not supply its own via WithCollectionIdentity. The
// factory is called once; every collection lacking its own identity config
// shares the resulting instance.
func WithDefaultIdentityManager(newManager func() identity.Manager) SchemaOption {
	return func(b *schemaBuild) { b.defaultIdmFactory = newManager }
}

// WithLogger sets the schema-wide logger, passed to every collaborator that
// logs (currently the serializer registry).
func WithLogger(log logger.Logger) SchemaOption {
	return func(b *schemaBuild) { b.logger = log }
}

// WithSeeds registers a named seed function. isDefault marks it as part of
// the default seed set LoadSeeds(OnlyDefault()) runs.
func WithSeeds(name string, fn SeedFunc, isDefault bool) SchemaOption {
	return func(b *schemaBuild) {
		if b.seeds == nil {
			b.seeds = map[string]seedEntry{}
		}
		if _, exists := b.seeds[name]; !exists {
			b.seedOrder = append(b.seedOrder, name)
		}
		b.seeds[name] = seedEntry{fn: fn, isDefault: isDefault}
	}
}

// NewSchema builds a live Schema from collection configs. Every setup error
// (an unresolvable relation target, an ambiguous inverse, a duplicate
// collection name) is fatal to construction and returned, never panicked.
func NewSchema(collections map[string]CollectionConfig, opts ...SchemaOption) (*Schema, error) {
	build := &schemaBuild{}
	for _, opt := range opts {
		opt(build)
	}
	if build.logger == nil {
		build.logger = logger.NewNullLogger()
	}

	var defaultIdm identity.Manager
	if build.defaultIdmFactory != nil {
		defaultIdm = build.defaultIdmFactory()
	} else {
		defaultIdm = identity.NewStringManager()
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	templateToCollection := make(map[string]string, len(names))
	for _, name := range names {
		templateToCollection[collections[name].Template.Name] = name
	}

	db := dbreg.New()
	relations := relationship.NewRegistry()
	for _, name := range names {
		cfg := collections[name]
		idm := cfg.Identity
		if idm == nil {
			idm = defaultIdm
		}
		db.Register(name, idm)
		relations.EnsureCollection(name)
	}

	for _, name := range names {
		cfg := collections[name]
		relNames := make([]string, 0, len(cfg.Relations))
		for relName := range cfg.Relations {
			relNames = append(relNames, relName)
		}
		sort.Strings(relNames)
		for _, relName := range relNames {
			rel := cfg.Relations[relName]
			targetCollection, ok := templateToCollection[rel.Target]
			if !ok {
				return nil, fmt.Errorf("memorm: morm: relation %q on %q targets unregistered template %q", relName, name, rel.Target)
			}
			rel.Target = targetCollection
			relations.Define(name, relName, rel)
		}
	}
	if err := relations.Resolve(); err != nil {
		return nil, fmt.Errorf("memorm: morm: %w", err)
	}

	engine := relationship.NewEngine(relations, db)

	resolve := func(collection string, id any) (map[string]any, bool) {
		rec, err := db.Collection(collection).Find(id)
		if err != nil {
			return nil, false
		}
		return rec, true
	}
	serReg := serializer.NewRegistry(relations, resolve, build.logger)
	for _, name := range names {
		cfg := collections[name]
		serCfg := serializer.New()
		if cfg.Serializer != nil {
			serCfg = *cfg.Serializer
		}
		serReg.Configure(name, cfg.Template.Name, serCfg)
	}

	factories := factory.NewRegistry()
	for _, name := range names {
		cfg := collections[name]
		fOpts := []factory.Option{factory.WithBaseAttributes(cfg.Factory.Attributes)}
		traitNames := make([]string, 0, len(cfg.Factory.Traits))
		for traitName := range cfg.Factory.Traits {
			traitNames = append(traitNames, traitName)
		}
		sort.Strings(traitNames)
		for _, traitName := range traitNames {
			fOpts = append(fOpts, factory.WithTrait(traitName, cfg.Factory.Traits[traitName]))
		}
		if cfg.Factory.AfterCreate != nil {
			fOpts = append(fOpts, factory.WithAfterCreate(cfg.Factory.AfterCreate))
		}
		f := factory.New(name, factories, db, relations, engine, serReg, fOpts...)
		factories.Register(name, f)
	}

	colls := make(map[string]*Collection, len(names))
	for _, name := range names {
		f, _ := factories.For(name)
		colls[name] = &Collection{
			name:       name,
			db:         db,
			relations:  relations,
			engine:     engine,
			serializer: serReg,
			factory:    f,
		}
	}

	return &Schema{
		db:          db,
		relations:   relations,
		engine:      engine,
		serializer:  serReg,
		factories:   factories,
		collections: colls,
		defaultIdm:  defaultIdm,
		logger:      build.logger,
		seeds:       build.seeds,
		seedOrder:   build.seedOrder,
	}, nil
}

// Collection returns the collection facade registered under name.
func (s *Schema) Collection(name string) (*Collection, bool) {
	c, ok := s.collections[name]
	return c, ok
}

// DB returns the schema's underlying document store registry.
func (s *Schema) DB() *dbreg.DB { return s.db }

// IdentityManager returns the schema-wide default identity manager (shared
// by every collection that did not supply its own).
func (s *Schema) IdentityManager() identity.Manager { return s.defaultIdm }

// Logger returns the schema-wide logger.
func (s *Schema) Logger() logger.Logger { return s.logger }

// LoadSeedsOption narrows which registered seeds LoadSeeds runs.
type LoadSeedsOption func(*loadSeedsConfig)

type loadSeedsConfig struct {
	onlyDefault bool
	only        map[string]bool
}

// OnlyDefault restricts LoadSeeds to seeds registered with isDefault=true.
func OnlyDefault() LoadSeedsOption {
	return func(c *loadSeedsConfig) { c.onlyDefault = true }
}

// Only restricts LoadSeeds to the named seeds.
func Only(names ...string) LoadSeedsOption {
	return func(c *loadSeedsConfig) {
		c.only = make(map[string]bool, len(names))
		for _, n := range names {
			c.only[n] = true
		}
	}
}

// LoadSeeds runs registered seed functions in registration order, filtered
// by opts (no filter runs every seed). A seed's error aborts the remaining
// seeds and is returned wrapped with the seed's name.
func (s *Schema) LoadSeeds(opts ...LoadSeedsOption) error {
	cfg := &loadSeedsConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	for _, name := range s.seedOrder {
		entry := s.seeds[name]
		if cfg.onlyDefault && !entry.isDefault {
			continue
		}
		if cfg.only != nil && !cfg.only[name] {
			continue
		}
		if err := entry.fn(s); err != nil {
			return fmt.Errorf("memorm: morm: seed %q: %w", name, err)
		}
	}
	return nil
}
