// Package store implements DbCollection, the in-memory document store that
// backs a single model collection: id-indexed record storage, the query
// grammar from predicate, and ordered/paginated reads. Modeled on the
// teacher's database/ driver layer, with SQL execution replaced by a plain
// map and the predicate package standing in for a query compiler.
package store

import "errors"

var (
	// ErrDuplicateID is returned by Insert when a record with the given id
	// already exists in the collection.
	ErrDuplicateID = errors.New("memorm: store: duplicate id")

	// ErrNotFound is returned by operations that require an existing record.
	ErrNotFound = errors.New("memorm: store: record not found")

	// ErrMissingID is returned when a record has no "id" attribute at all.
	ErrMissingID = errors.New("memorm: store: record has no id")
)
