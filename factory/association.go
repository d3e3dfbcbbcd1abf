package factory

// associationKind discriminates the four association descriptor shapes a
// base-attributes or trait-attributes record may hold as a field value.
type associationKind int

const (
	assocCreate associationKind = iota
	assocCreateMany
	assocLink
	assocLinkMany
)

// Association is a declarative descriptor for a relationship value that a
// factory resolves after the owning model is saved, rather than at
// attribute-evaluation time. Values of this type are never written to the
// record directly; Build strips them out and processes them in its own
// association pass.
type Association struct {
	kind      associationKind
	template  string
	count     int
	overrides []any
	selector  any
}

// Create declares that, when the owning model is built, a new related
// model should be created from the named factory (applying overrides) and
// linked.
func Create(template string, overrides ...map[string]any) Association {
	return Association{kind: assocCreate, template: template, overrides: toAnySlice(overrides)}
}

// CreateMany declares that n new related models should be created from the
// named factory and linked (for a has-many relation).
func CreateMany(template string, n int, overrides ...map[string]any) Association {
	return Association{kind: assocCreateMany, template: template, count: n, overrides: toAnySlice(overrides)}
}

// Link declares that an existing related model should be resolved (by id,
// query, or *model.Model) and linked.
func Link(template string, selector any) Association {
	return Association{kind: assocLink, template: template, selector: selector}
}

// LinkMany declares that a set of existing related models should be
// resolved (by a list of ids/models, or a query matching many) and linked.
func LinkMany(template string, selector any) Association {
	return Association{kind: assocLinkMany, template: template, selector: selector}
}

func toAnySlice(overrides []map[string]any) []any {
	out := make([]any, len(overrides))
	for i, o := range overrides {
		out[i] = o
	}
	return out
}
