package predicate

// Op identifies a field-level comparison operator.
type Op string

const (
	OpEq         Op = "eq"
	OpNe         Op = "ne"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpIn         Op = "in"
	OpNotIn      Op = "notIn"
	OpBetween    Op = "between"
	OpLike       Op = "like"
	OpILike      Op = "ilike"
	OpStartsWith Op = "startsWith"
	OpEndsWith   Op = "endsWith"
	OpContains   Op = "contains"
)

// FieldOp is a single-field comparison used as a FieldMap value, e.g.
// FieldMap{"age": Gte(30)}.
type FieldOp struct {
	Op    Op
	Value any
	Upper any // second operand, only used by Between
}

func Eq(v any) FieldOp         { return FieldOp{Op: OpEq, Value: v} }
func Ne(v any) FieldOp         { return FieldOp{Op: OpNe, Value: v} }
func Lt(v any) FieldOp         { return FieldOp{Op: OpLt, Value: v} }
func Lte(v any) FieldOp        { return FieldOp{Op: OpLte, Value: v} }
func Gt(v any) FieldOp         { return FieldOp{Op: OpGt, Value: v} }
func Gte(v any) FieldOp        { return FieldOp{Op: OpGte, Value: v} }
func In(values ...any) FieldOp { return FieldOp{Op: OpIn, Value: values} }
func NotIn(values ...any) FieldOp {
	return FieldOp{Op: OpNotIn, Value: values}
}
func Between(lo, hi any) FieldOp    { return FieldOp{Op: OpBetween, Value: lo, Upper: hi} }
func Like(pattern string) FieldOp   { return FieldOp{Op: OpLike, Value: pattern} }
func ILike(pattern string) FieldOp  { return FieldOp{Op: OpILike, Value: pattern} }
func StartsWith(s string) FieldOp   { return FieldOp{Op: OpStartsWith, Value: s} }
func EndsWith(s string) FieldOp     { return FieldOp{Op: OpEndsWith, Value: s} }
func Contains(v any) FieldOp        { return FieldOp{Op: OpContains, Value: v} }

// evaluate applies the operator to a record's field value.
func (f FieldOp) evaluate(fieldValue any) bool {
	switch f.Op {
	case OpEq:
		return equal(fieldValue, f.Value)
	case OpNe:
		return !equal(fieldValue, f.Value)
	case OpLt:
		return compare(fieldValue, f.Value) < 0
	case OpLte:
		return compare(fieldValue, f.Value) <= 0
	case OpGt:
		return compare(fieldValue, f.Value) > 0
	case OpGte:
		return compare(fieldValue, f.Value) >= 0
	case OpIn:
		return inSlice(fieldValue, f.Value)
	case OpNotIn:
		return !inSlice(fieldValue, f.Value)
	case OpBetween:
		return compare(fieldValue, f.Value) >= 0 && compare(fieldValue, f.Upper) <= 0
	case OpLike:
		return likeMatch(fieldValue, toStr(f.Value), false)
	case OpILike:
		return likeMatch(fieldValue, toStr(f.Value), true)
	case OpStartsWith:
		return startsWith(fieldValue, toStr(f.Value), false)
	case OpEndsWith:
		return endsWith(fieldValue, toStr(f.Value), false)
	case OpContains:
		return containsMatch(fieldValue, f.Value)
	default:
		return false
	}
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}

func inSlice(fieldValue, values any) bool {
	list, ok := values.([]any)
	if !ok {
		return false
	}
	for _, v := range list {
		if equal(fieldValue, v) {
			return true
		}
	}
	return false
}

func startsWith(fieldValue any, prefix string, caseInsensitive bool) bool {
	return likeMatch(fieldValue, escapeLiteral(prefix)+"%", caseInsensitive)
}

func endsWith(fieldValue any, suffix string, caseInsensitive bool) bool {
	return likeMatch(fieldValue, "%"+escapeLiteral(suffix), caseInsensitive)
}

// escapeLiteral is a no-op placeholder kept separate from the caller so
// startsWith/endsWith read as pattern-building, not string concatenation.
func escapeLiteral(s string) string { return s }

// containsMatch implements "contains": array membership for slice fields,
// substring for string fields.
func containsMatch(fieldValue, needle any) bool {
	switch fv := fieldValue.(type) {
	case []any:
		for _, v := range fv {
			if equal(v, needle) {
				return true
			}
		}
		return false
	case nil:
		return false
	default:
		s, ok := needle.(string)
		if !ok {
			return false
		}
		return wildcardMatch(toStrAny(fieldValue), "%"+s+"%")
	}
}

func toStrAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
