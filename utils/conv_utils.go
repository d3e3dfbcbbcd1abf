package utils

import (
	"fmt"
	"strconv"
)

// ToBool coerces a record/query value to bool for predicate comparison.
// Values arrive as whatever Go type a caller literal or a stored record
// happens to use (string, a numeric type, []byte, ...), and must compare
// equal regardless: "1", 1, and true are all truthy.
func ToBool(v any) bool {
	if v == nil {
		return false
	}

	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint32:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0
	case float64:
		return val != 0
	case string:
		switch val {
		case "true", "TRUE", "True", "1", "yes", "YES", "Yes":
			return true
		case "false", "FALSE", "False", "0", "no", "NO", "No", "":
			return false
		default:
			if n, err := strconv.ParseFloat(val, 64); err == nil {
				return n != 0
			}
			return false
		}
	case []byte:
		return ToBool(string(val))
	default:
		return false
	}
}

// ToInt64 coerces a record/query value to int64 for predicate comparison
// (equality and ordering operators) between values of differing Go types.
func ToInt64(v any) int64 {
	if v == nil {
		return 0
	}

	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case uint:
		return int64(val)
	case uint64:
		return int64(val)
	case uint32:
		return int64(val)
	case uint16:
		return int64(val)
	case uint8:
		return int64(val)
	case float64:
		return int64(val)
	case float32:
		return int64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return int64(f)
		}
		return 0
	case []byte:
		return ToInt64(string(val))
	default:
		return 0
	}
}

// ToFloat64 coerces a record/query value to float64 for predicate
// comparison between values of differing Go types.
func ToFloat64(v any) float64 {
	if v == nil {
		return 0.0
	}

	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int16:
		return float64(val)
	case int8:
		return float64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case uint32:
		return float64(val)
	case uint16:
		return float64(val)
	case uint8:
		return float64(val)
	case bool:
		if val {
			return 1.0
		}
		return 0.0
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		return 0.0
	case []byte:
		return ToFloat64(string(val))
	default:
		return 0.0
	}
}

// ToString coerces a record/query value to string, for predicate
// comparisons that work on text (the string fallback of ordering
// comparisons, and like/ilike pattern matching).
func ToString(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
