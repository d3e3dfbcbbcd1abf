package predicate

import (
	"strings"

	"github.com/memorm/memorm/utils"
)

// compare returns -1, 0, or 1 comparing a and b, coercing types the way a
// permissive in-memory matcher must: nil sorts before everything, numeric
// types compare numerically regardless of exact width, everything else
// falls back to string comparison. Mirrors the teacher's
// ConditionEvaluator.compareValues.
func compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	switch va := a.(type) {
	case int, int32, int64, uint, uint32, uint64:
		vb := utils.ToInt64(b)
		va64 := utils.ToInt64(va)
		switch {
		case va64 < vb:
			return -1
		case va64 > vb:
			return 1
		default:
			return 0
		}
	case float32, float64:
		vb := utils.ToFloat64(b)
		va64 := utils.ToFloat64(va)
		switch {
		case va64 < vb:
			return -1
		case va64 > vb:
			return 1
		default:
			return 0
		}
	case bool:
		vb := utils.ToBool(b)
		switch {
		case !va && vb:
			return -1
		case va && !vb:
			return 1
		default:
			return 0
		}
	}

	sa, sb := utils.ToString(a), utils.ToString(b)
	return strings.Compare(sa, sb)
}

func equal(a, b any) bool { return compare(a, b) == 0 }

// likeMatch implements SQL-style %/_ wildcard matching. caseInsensitive
// selects ilike semantics.
func likeMatch(value any, pattern string, caseInsensitive bool) bool {
	text := utils.ToString(value)
	if caseInsensitive {
		text = strings.ToLower(text)
		pattern = strings.ToLower(pattern)
	}
	return wildcardMatch(text, pattern)
}

// wildcardMatch matches text against a SQL LIKE pattern using % (any run
// of characters) and _ (any single character), without reaching for a
// regexp compile on every call.
func wildcardMatch(text, pattern string) bool {
	return wildcardMatchAt(text, pattern, 0, 0)
}

func wildcardMatchAt(text, pattern string, ti, pi int) bool {
	for pi < len(pattern) {
		switch pattern[pi] {
		case '%':
			// Collapse consecutive %.
			for pi < len(pattern) && pattern[pi] == '%' {
				pi++
			}
			if pi == len(pattern) {
				return true
			}
			for i := ti; i <= len(text); i++ {
				if wildcardMatchAt(text, pattern, i, pi) {
					return true
				}
			}
			return false
		case '_':
			if ti >= len(text) {
				return false
			}
			ti++
			pi++
		default:
			if ti >= len(text) || text[ti] != pattern[pi] {
				return false
			}
			ti++
			pi++
		}
	}
	return ti == len(text)
}
