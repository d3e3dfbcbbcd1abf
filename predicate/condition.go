// Package predicate implements the store's query grammar: a tagged union
// of field-equality maps, boolean combinators, and escape-hatch callbacks,
// compiled to a plain matcher function over a record at call time. Modeled
// on the teacher's types.Condition tree (AndCondition/OrCondition/
// NotCondition/FieldCondition), but compiling to an in-memory predicate
// instead of a SQL fragment.
package predicate

// Matcher tests whether a record satisfies a compiled condition.
type Matcher func(record map[string]any) bool

// Condition is anything that can compile to a Matcher: a FieldMap, a
// boolean combinator (And/Or/Not), or a raw Callback.
type Condition interface {
	Compile() Matcher
}

// FieldMap is a conjunction of per-field equality or FieldOp checks. It is
// the most common leaf condition: FieldMap{"status": "active", "age": Gte(30)}.
type FieldMap map[string]any

func (f FieldMap) Compile() Matcher {
	return func(record map[string]any) bool {
		for field, want := range f {
			fieldValue := record[field]
			if op, ok := want.(FieldOp); ok {
				if !op.evaluate(fieldValue) {
					return false
				}
				continue
			}
			if !equal(fieldValue, want) {
				return false
			}
		}
		return true
	}
}

// And requires every sub-condition to match.
type And []Condition

func (a And) Compile() Matcher {
	matchers := make([]Matcher, len(a))
	for i, c := range a {
		matchers[i] = c.Compile()
	}
	return func(record map[string]any) bool {
		for _, m := range matchers {
			if !m(record) {
				return false
			}
		}
		return true
	}
}

// Or requires at least one sub-condition to match.
type Or []Condition

func (o Or) Compile() Matcher {
	matchers := make([]Matcher, len(o))
	for i, c := range o {
		matchers[i] = c.Compile()
	}
	return func(record map[string]any) bool {
		for _, m := range matchers {
			if m(record) {
				return true
			}
		}
		return false
	}
}

// Not negates a single sub-condition.
type Not struct{ Condition Condition }

func (n Not) Compile() Matcher {
	m := n.Condition.Compile()
	return func(record map[string]any) bool { return !m(record) }
}

// Helpers is passed to a Callback condition so it can reuse the same
// comparison semantics as the field-op DSL without reimplementing them.
type Helpers struct{}

func (Helpers) And(values ...bool) bool {
	for _, v := range values {
		if !v {
			return false
		}
	}
	return true
}

func (Helpers) Or(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

func (Helpers) Not(v bool) bool                   { return !v }
func (Helpers) Eq(a, b any) bool                  { return equal(a, b) }
func (Helpers) Ne(a, b any) bool                  { return !equal(a, b) }
func (Helpers) Lt(a, b any) bool                  { return compare(a, b) < 0 }
func (Helpers) Lte(a, b any) bool                 { return compare(a, b) <= 0 }
func (Helpers) Gt(a, b any) bool                  { return compare(a, b) > 0 }
func (Helpers) Gte(a, b any) bool                 { return compare(a, b) >= 0 }
func (Helpers) In(v any, values ...any) bool       { return inSlice(v, any(values)) }
func (Helpers) NotIn(v any, values ...any) bool    { return !inSlice(v, any(values)) }
func (Helpers) Between(v, lo, hi any) bool         { return compare(v, lo) >= 0 && compare(v, hi) <= 0 }
func (Helpers) Like(v any, pattern string) bool    { return likeMatch(v, pattern, false) }
func (Helpers) ILike(v any, pattern string) bool   { return likeMatch(v, pattern, true) }
func (Helpers) StartsWith(v any, s string) bool    { return startsWith(v, s, false) }
func (Helpers) EndsWith(v any, s string) bool      { return endsWith(v, s, false) }
func (Helpers) Contains(v, needle any) bool        { return containsMatch(v, needle) }

// CallbackFn is a free-form predicate over a record, given the same
// comparison helpers as the declarative DSL.
type CallbackFn func(record map[string]any, h Helpers) bool

// Callback wraps a CallbackFn as a Condition, the escape hatch for
// predicates the declarative grammar can't express.
type Callback struct{ Fn CallbackFn }

func (c Callback) Compile() Matcher {
	return func(record map[string]any) bool { return c.Fn(record, Helpers{}) }
}
