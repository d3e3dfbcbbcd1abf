// Package dbreg is the database registry: one DbCollection and one identity
// manager per collection name, plus a schema-wide Clear that resets both
// together. Modeled on the teacher's types.Database registry of per-model
// drivers, minus connection lifecycle (there is nothing to connect to).
package dbreg

import (
	"fmt"

	"github.com/memorm/memorm/identity"
	"github.com/memorm/memorm/store"
)

// DB is the registry of collection stores for one schema instance.
type DB struct {
	collections map[string]*store.DbCollection
	order       []string
}

// New creates an empty registry.
func New() *DB {
	return &DB{collections: make(map[string]*store.DbCollection)}
}

// Register adds a collection's store under name. Registering the same name
// twice panics, since it indicates a schema construction bug, not a runtime
// condition callers should recover from.
func (d *DB) Register(name string, idm identity.Manager) *store.DbCollection {
	if _, exists := d.collections[name]; exists {
		panic(fmt.Sprintf("memorm: dbreg: collection %q already registered", name))
	}
	s := store.New(name, idm)
	d.collections[name] = s
	d.order = append(d.order, name)
	return s
}

// Collection returns the store registered under name, or nil if none.
func (d *DB) Collection(name string) *store.DbCollection {
	return d.collections[name]
}

// Names returns every registered collection name in registration order.
func (d *DB) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Clear empties every registered collection and resets every identity
// manager, atomically from the caller's point of view: no partial state is
// observable between collections.
func (d *DB) Clear() {
	for _, name := range d.order {
		d.collections[name].Clear()
	}
}
