package predicate

import "sort"

// Direction is an ordering direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderTerm pins one field of a multi-field sort.
type OrderTerm struct {
	Field     string
	Direction Direction
}

// OrderBy builds an ordered list of sort terms from field/direction pairs,
// e.g. OrderBy("age", Asc, "name", Desc).
func OrderBy(pairs ...any) []OrderTerm {
	var terms []OrderTerm
	for i := 0; i+1 < len(pairs); i += 2 {
		field, _ := pairs[i].(string)
		dir, _ := pairs[i+1].(Direction)
		terms = append(terms, OrderTerm{Field: field, Direction: dir})
	}
	return terms
}

// SortRecords stably sorts records by the given terms, breaking all ties
// on the "id" attribute so repeated sorts over the same data are
// reproducible regardless of insertion order.
func SortRecords(records []map[string]any, terms []OrderTerm) {
	if len(terms) == 0 {
		terms = []OrderTerm{{Field: "id", Direction: Asc}}
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, term := range terms {
			c := compare(records[i][term.Field], records[j][term.Field])
			if c == 0 {
				continue
			}
			if term.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return compare(records[i]["id"], records[j]["id"]) < 0
	})
}
