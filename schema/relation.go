package schema

import "fmt"

// Kind identifies the shape of a relationship's foreign key: a scalar id
// for belongs-to, a list of ids for has-many.
type Kind string

const (
	BelongsTo Kind = "belongsTo"
	HasMany   Kind = "hasMany"
)

// InverseMode selects how a relation's inverse is resolved at schema setup.
type InverseMode int

const (
	// InverseAuto searches the target template's relations for the unique
	// one pointing back at the owning collection.
	InverseAuto InverseMode = iota
	// InverseNone disables bidirectional synchronization for this relation.
	InverseNone
	// InverseNamed synchronizes against the relation named InverseName.
	InverseNamed
)

// Relation is a tagged descriptor of one relationship on a collection:
// kind, target template, foreign key attribute, inverse resolution mode,
// and the collection name used to host side-loaded records.
type Relation struct {
	Kind        Kind
	Target      string // target template name, e.g. "user"
	ForeignKey  string // e.g. "authorId" or "postIds"
	InverseMode InverseMode
	InverseName string
	SideLoad    string // side-load collection name, defaults to target's plural
}

// RelationOption configures a Relation at construction time.
type RelationOption func(*Relation)

// Inverse pins the relation's inverse to an explicit name on the target.
func Inverse(name string) RelationOption {
	return func(r *Relation) {
		r.InverseMode = InverseNamed
		r.InverseName = name
	}
}

// NoInverse disables bidirectional FK synchronization for this relation.
func NoInverse() RelationOption {
	return func(r *Relation) {
		r.InverseMode = InverseNone
	}
}

// ForeignKey overrides the default foreign key attribute name.
func ForeignKey(name string) RelationOption {
	return func(r *Relation) { r.ForeignKey = name }
}

// SideLoadAs overrides the default side-load collection name.
func SideLoadAs(name string) RelationOption {
	return func(r *Relation) { r.SideLoad = name }
}

// DefaultForeignKey returns the conventional FK attribute name for a
// relation of the given kind targeting the given template name:
// belongsTo -> "<target>Id", hasMany -> "<target>Ids".
func DefaultForeignKey(kind Kind, targetName string) string {
	switch kind {
	case BelongsTo:
		return lowerFirst(targetName) + "Id"
	case HasMany:
		return lowerFirst(targetName) + "Ids"
	default:
		return lowerFirst(targetName)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return string(s[0]-'A'+'a') + s[1:]
	}
	return s
}

// NewBelongsTo builds a belongs-to relation targeting the given template.
func NewBelongsTo(target string, opts ...RelationOption) Relation {
	r := Relation{
		Kind:       BelongsTo,
		Target:     target,
		ForeignKey: DefaultForeignKey(BelongsTo, target),
		SideLoad:   Pluralize(target),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewHasMany builds a has-many relation targeting the given template.
func NewHasMany(target string, opts ...RelationOption) Relation {
	r := Relation{
		Kind:       HasMany,
		Target:     target,
		ForeignKey: DefaultForeignKey(HasMany, target),
		SideLoad:   Pluralize(target),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Validate checks structural invariants of a relation definition once the
// target template is known to exist.
func Validate(name string, r Relation, targetExists bool) error {
	if !targetExists {
		return fmt.Errorf("memorm: schema: relation %q targets unknown template %q", name, r.Target)
	}
	if r.ForeignKey == "" {
		return fmt.Errorf("memorm: schema: relation %q has no foreign key", name)
	}
	if r.Kind != BelongsTo && r.Kind != HasMany {
		return fmt.Errorf("memorm: schema: relation %q has unknown kind %q", name, r.Kind)
	}
	return nil
}
