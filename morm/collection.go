package morm

import (
	"github.com/memorm/memorm/dbreg"
	"github.com/memorm/memorm/factory"
	"github.com/memorm/memorm/model"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/serializer"
)

// Collection is the live per-collection facade a Schema exposes: document
// store access, factory-driven creation, and relationship-aware, saved
// model wrapping, all scoped to one collection name.
type Collection struct {
	name       string
	db         *dbreg.DB
	relations  *relationship.Registry
	engine     *relationship.Engine
	serializer *serializer.Registry
	factory    *factory.Factory
}

// Name returns the collection's registered name.
func (c *Collection) Name() string { return c.name }

// Factory returns the collection's factory, for callers that need direct
// access (e.g. CreateMany with a mixed trait/override argument list).
func (c *Collection) Factory() *factory.Factory { return c.factory }

func (c *Collection) wrap(rec map[string]any) *model.Model {
	return model.Wrap(c.name, rec, c.db, c.relations, c.engine, c.serializer)
}

// Create builds and saves one model via the collection's factory. args may
// mix trait names and override records.
func (c *Collection) Create(args ...any) (*model.Model, error) {
	return c.factory.Build(args...)
}

// CreateMany builds and saves n models via the collection's factory.
func (c *Collection) CreateMany(n int, args ...any) (*model.ModelCollection, error) {
	return c.factory.CreateMany(n, args...)
}

// Find returns the model with the given id.
func (c *Collection) Find(id any) (*model.Model, error) {
	rec, err := c.db.Collection(c.name).Find(id)
	if err != nil {
		return nil, err
	}
	return c.wrap(rec), nil
}

// FindBy returns the first model matching rawQuery.
func (c *Collection) FindBy(rawQuery any) (*model.Model, error) {
	rec, err := c.db.Collection(c.name).FindBy(rawQuery)
	if err != nil {
		return nil, err
	}
	return c.wrap(rec), nil
}

// FindOrCreateBy returns the first existing model matching query, or
// builds one via the factory using query as overrides.
func (c *Collection) FindOrCreateBy(query map[string]any) (*model.Model, error) {
	return c.factory.FindOrCreateBy(query)
}

// FindMany returns every model matching rawQuery as a ModelCollection
// carrying the filter-match total.
func (c *Collection) FindMany(rawQuery any) (*model.ModelCollection, error) {
	result, err := c.db.Collection(c.name).FindMany(rawQuery)
	if err != nil {
		return nil, err
	}
	return c.wrapAll(result.Records).WithTotal(result.Total), nil
}

// Where is an alias for FindMany, matching the facade vocabulary spelled
// out for collection consumers.
func (c *Collection) Where(rawQuery any) (*model.ModelCollection, error) {
	return c.FindMany(rawQuery)
}

// All returns every model in the collection, in insertion order.
func (c *Collection) All() *model.ModelCollection {
	return c.wrapAll(c.db.Collection(c.name).All())
}

// First returns the first model in insertion order.
func (c *Collection) First() (*model.Model, error) {
	rec, err := c.db.Collection(c.name).First()
	if err != nil {
		return nil, err
	}
	return c.wrap(rec), nil
}

// Last returns the last model in insertion order.
func (c *Collection) Last() (*model.Model, error) {
	rec, err := c.db.Collection(c.name).Last()
	if err != nil {
		return nil, err
	}
	return c.wrap(rec), nil
}

// Update finds the model with id and applies patch to it.
func (c *Collection) Update(id any, patch map[string]any) (*model.Model, error) {
	m, err := c.Find(id)
	if err != nil {
		return nil, err
	}
	return m.Update(patch)
}

// Delete finds the model with id and destroys it.
func (c *Collection) Delete(id any) error {
	m, err := c.Find(id)
	if err != nil {
		return err
	}
	return m.Destroy()
}

// Serialize finds the model with id and serializes it.
func (c *Collection) Serialize(id any, opts ...serializer.Option) (any, error) {
	m, err := c.Find(id)
	if err != nil {
		return nil, err
	}
	return m.Serialize(opts...)
}

// ToJSON is an alias for Serialize.
func (c *Collection) ToJSON(id any, opts ...serializer.Option) (any, error) {
	return c.Serialize(id, opts...)
}

func (c *Collection) wrapAll(records []map[string]any) *model.ModelCollection {
	items := make([]*model.Model, len(records))
	for i, rec := range records {
		items[i] = c.wrap(rec)
	}
	return model.NewCollection(items)
}
