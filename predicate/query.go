package predicate

import "fmt"

// Query is the full query object: a where predicate, ordering, and
// offset/limit/cursor pagination.
type Query struct {
	Where   Condition
	OrderBy []OrderTerm
	Offset  *int
	Limit   *int
	Cursor  map[string]any
}

// Matches reports whether a record satisfies the query's where clause (or
// every record, if none is set).
func (q *Query) Matches(record map[string]any) bool {
	if q == nil || q.Where == nil {
		return true
	}
	return q.Where.Compile()(record)
}

// Normalize accepts any of the three query shapes the store contract
// allows — a list of ids, a bare attribute-equality map, or a full *Query
// — and returns a canonical *Query. A nil input matches everything.
func Normalize(raw any) (*Query, error) {
	switch v := raw.(type) {
	case nil:
		return &Query{}, nil
	case *Query:
		return v, nil
	case Query:
		return &v, nil
	case Condition:
		return &Query{Where: v}, nil
	case FieldMap:
		return &Query{Where: v}, nil
	case map[string]any:
		return &Query{Where: FieldMap(v)}, nil
	case []any:
		return &Query{Where: FieldMap{"id": In(v...)}}, nil
	default:
		ids, ok := toIDSlice(v)
		if ok {
			return &Query{Where: FieldMap{"id": In(ids...)}}, nil
		}
		return nil, fmt.Errorf("memorm: predicate: unsupported query shape %T", raw)
	}
}

// toIDSlice reflects over concrete slice types ([]string, []int, ...) so
// callers don't have to box every id list as []any by hand.
func toIDSlice(v any) ([]any, bool) {
	switch ids := v.(type) {
	case []string:
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}
		return out, true
	case []int:
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}
		return out, true
	case []int64:
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}
		return out, true
	default:
		return nil, false
	}
}
