// Package factory builds saved model instances from declarative templates:
// base attributes (constants, lazy functions, or association descriptors),
// named traits, and after-create hooks. Grounded on the teacher's
// functional-options builder pattern (orm.NewClient / schema.NewTemplate),
// generalized from client configuration to record generation.
package factory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/imdario/mergo"

	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/model"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/serializer"
	"github.com/memorm/memorm/store"
)

// ErrUnknownTrait is returned when Build is given a trait name the factory
// does not define.
var ErrUnknownTrait = errors.New("memorm: factory: unknown trait")

// ErrUnknownAssociationTarget is returned when an association descriptor
// names a collection with no registered factory.
var ErrUnknownAssociationTarget = errors.New("memorm: factory: unknown association target")

// Factory builds models of one collection.
type Factory struct {
	collection  string
	attributes  map[string]any
	traits      map[string]Trait
	afterCreate func(*model.Model) error

	registry   *Registry
	db         *dbreg.DB
	relations  *relationship.Registry
	engine     *relationship.Engine
	serializer *serializer.Registry
}

// Option configures a Factory at construction time.
type Option func(*Factory)

// WithBaseAttributes sets the factory's base attributes record (constants,
// AttrFuncs, and Associations).
func WithBaseAttributes(attrs map[string]any) Option {
	return func(f *Factory) { f.attributes = attrs }
}

// WithTrait registers a named trait.
func WithTrait(name string, t Trait) Option {
	return func(f *Factory) { f.traits[name] = t }
}

// WithAfterCreate attaches the factory-level after-create hook, run before
// any trait's hook.
func WithAfterCreate(fn func(*model.Model) error) Option {
	return func(f *Factory) { f.afterCreate = fn }
}

// New creates a factory for collection. registry must eventually (by the
// time Build resolves any association) hold every factory an association
// descriptor might reference, including f itself if it declares any
// associations of its own collection's template.
func New(collection string, registry *Registry, db *dbreg.DB, relations *relationship.Registry, engine *relationship.Engine, ser *serializer.Registry, opts ...Option) *Factory {
	f := &Factory{
		collection: collection,
		attributes: map[string]any{},
		traits:     map[string]Trait{},
		registry:   registry,
		db:         db,
		relations:  relations,
		engine:     engine,
		serializer: ser,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type layer struct {
	plain map[string]any
	assoc map[string]Association
}

func splitLayer(m map[string]any) layer {
	l := layer{plain: map[string]any{}, assoc: map[string]Association{}}
	for k, v := range m {
		if a, ok := v.(Association); ok {
			l.assoc[k] = a
		} else {
			l.plain[k] = v
		}
	}
	return l
}

// Build constructs and saves one model. args may be trait names (strings
// naming a trait this factory defines) or override records
// (map[string]any), in any order; each is applied per its kind regardless
// of position, preserving relative order within each kind.
func (f *Factory) Build(args ...any) (*model.Model, error) {
	var traitNames []string
	var overrides []layer
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			if _, ok := f.traits[v]; !ok {
				return nil, fmt.Errorf("%w: %q on %q", ErrUnknownTrait, v, f.collection)
			}
			traitNames = append(traitNames, v)
		case map[string]any:
			overrides = append(overrides, splitLayer(v))
		default:
			return nil, fmt.Errorf("memorm: factory: unsupported build argument %T", arg)
		}
	}

	base := splitLayer(f.attributes)
	traitLayers := make([]layer, len(traitNames))
	for i, name := range traitNames {
		traitLayers[i] = splitLayer(f.traits[name].attributes)
	}

	// Attribute merge: base, then overrides, then trait attributes in
	// argument order — traits win on conflict.
	mergedPlain := map[string]any{}
	if err := mergo.Merge(&mergedPlain, base.plain, mergo.WithOverride); err != nil {
		return nil, err
	}
	for _, o := range overrides {
		if err := mergo.Merge(&mergedPlain, o.plain, mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	for _, tl := range traitLayers {
		if err := mergo.Merge(&mergedPlain, tl.plain, mergo.WithOverride); err != nil {
			return nil, err
		}
	}

	// Association merge: factory-level wins over trait-level; any
	// override (plain value or explicit association) for the same name
	// wins over both.
	associations := map[string]Association{}
	for name, a := range base.assoc {
		associations[name] = a
	}
	for _, tl := range traitLayers {
		for relName, a := range tl.assoc {
			if _, claimed := associations[relName]; !claimed {
				associations[relName] = a
			}
		}
	}
	for _, o := range overrides {
		for relName := range o.plain {
			delete(associations, relName)
		}
		for relName, a := range o.assoc {
			associations[relName] = a
		}
	}

	coll := f.db.Collection(f.collection)
	if coll == nil {
		return nil, fmt.Errorf("memorm: factory: unknown collection %q", f.collection)
	}

	var id any
	if v, ok := mergedPlain["id"]; ok && v != nil {
		id = v
		coll.RecordID(id)
	} else {
		id = coll.Reserve()
	}
	delete(mergedPlain, "id")

	// Fields naming a relation (by relation name, not its foreign-key
	// attribute) are not document attributes: route them through Link
	// instead of writing them into the record literally.
	recordPlain := map[string]any{}
	relationOverrides := map[string]any{}
	for k, v := range mergedPlain {
		if _, isRel := f.relations.Get(f.collection, k); isRel {
			relationOverrides[k] = v
			continue
		}
		recordPlain[k] = v
	}
	// A relation value wins over an explicit foreign key for the same
	// relation.
	for name := range relationOverrides {
		if rel, ok := f.relations.Get(f.collection, name); ok {
			delete(recordPlain, rel.ForeignKey)
		}
	}

	record, err := resolveAttributes(id, recordPlain)
	if err != nil {
		return nil, err
	}

	stored, err := coll.InsertWithID(id, record)
	if err != nil {
		return nil, err
	}
	m := model.Wrap(f.collection, stored, f.db, f.relations, f.engine, f.serializer)

	relNames := make([]string, 0, len(relationOverrides))
	for name := range relationOverrides {
		relNames = append(relNames, name)
	}
	sort.Strings(relNames)
	for _, name := range relNames {
		if err := m.Link(name, relationOverrides[name]); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(associations))
	for name := range associations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := f.applyAssociation(m, name, associations[name]); err != nil {
			return nil, err
		}
	}

	if f.afterCreate != nil {
		if err := f.afterCreate(m); err != nil {
			return nil, err
		}
	}
	for _, name := range traitNames {
		if hook := f.traits[name].afterCreate; hook != nil {
			if err := hook(m); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// CreateMany repeats Build n times with the same args, returning the
// resulting models as a ModelCollection.
func (f *Factory) CreateMany(n int, args ...any) (*model.ModelCollection, error) {
	items := make([]*model.Model, 0, n)
	for i := 0; i < n; i++ {
		m, err := f.Build(args...)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return model.NewCollection(items), nil
}

// FindOrCreateBy returns the first existing model matching query, or
// builds one with query's fields as overrides.
func (f *Factory) FindOrCreateBy(query map[string]any) (*model.Model, error) {
	coll := f.db.Collection(f.collection)
	if coll == nil {
		return nil, fmt.Errorf("memorm: factory: unknown collection %q", f.collection)
	}
	rec, err := coll.FindBy(query)
	if err == nil {
		return model.Wrap(f.collection, rec, f.db, f.relations, f.engine, f.serializer), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return f.Build(query)
}

func (f *Factory) applyAssociation(owner *model.Model, name string, a Association) error {
	target, ok := f.registry.For(a.template)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAssociationTarget, a.template)
	}

	switch a.kind {
	case assocCreate:
		child, err := target.Build(a.overrides...)
		if err != nil {
			return err
		}
		return owner.Link(name, child)

	case assocCreateMany:
		children, err := target.CreateMany(a.count, a.overrides...)
		if err != nil {
			return err
		}
		return owner.LinkMany(name, toAnyModels(children))

	case assocLink:
		m, err := f.resolveOne(a.template, a.selector)
		if err != nil {
			return err
		}
		return owner.Link(name, m)

	case assocLinkMany:
		models, err := f.resolveMany(a.template, a.selector)
		if err != nil {
			return err
		}
		return owner.LinkMany(name, toAnyModels(models))

	default:
		return fmt.Errorf("memorm: factory: unknown association kind for %q", name)
	}
}

func (f *Factory) resolveOne(targetCollection string, selector any) (*model.Model, error) {
	coll := f.db.Collection(targetCollection)
	if coll == nil {
		return nil, fmt.Errorf("memorm: factory: unknown collection %q", targetCollection)
	}
	switch v := selector.(type) {
	case *model.Model:
		return v, nil
	case map[string]any:
		rec, err := coll.FindBy(v)
		if err != nil {
			return nil, err
		}
		return model.Wrap(targetCollection, rec, f.db, f.relations, f.engine, f.serializer), nil
	default:
		rec, err := coll.Find(v)
		if err != nil {
			return nil, err
		}
		return model.Wrap(targetCollection, rec, f.db, f.relations, f.engine, f.serializer), nil
	}
}

func (f *Factory) resolveMany(targetCollection string, selector any) ([]*model.Model, error) {
	coll := f.db.Collection(targetCollection)
	if coll == nil {
		return nil, fmt.Errorf("memorm: factory: unknown collection %q", targetCollection)
	}
	switch v := selector.(type) {
	case []any:
		out := make([]*model.Model, 0, len(v))
		for _, sel := range v {
			m, err := f.resolveOne(targetCollection, sel)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	case map[string]any:
		result, err := coll.FindMany(v)
		if err != nil {
			return nil, err
		}
		out := make([]*model.Model, 0, len(result.Records))
		for _, rec := range result.Records {
			out = append(out, model.Wrap(targetCollection, rec, f.db, f.relations, f.engine, f.serializer))
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		m, err := f.resolveOne(targetCollection, v)
		if err != nil {
			return nil, err
		}
		return []*model.Model{m}, nil
	}
}

func toAnyModels(c *model.ModelCollection) []any {
	out := make([]any, c.Len())
	for i, m := range c.All() {
		out[i] = m
	}
	return out
}
