package indexers

import (
	"math"
	"strconv"
	"strings"
)

// CoercePage converts a loosely typed page value to an int no smaller than
// floor. The second result is false when raw was unusable and floor was
// returned in its place.
//
// Strings must hold a base-10 integer ("2.5" is rejected), floats are
// truncated toward zero, and every other type is rejected. Values outside
// the int32 range are rejected whatever their type.
func CoercePage(raw any, floor int) (int, bool) {
	var n int
	switch v := raw.(type) {
	case nil:
		return floor, false
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return floor, false
		}
		n = int(parsed)
	case *string:
		if v == nil {
			return floor, false
		}
		return CoercePage(*v, floor)
	case int:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return floor, false
		}
		n = v
	case int8:
		n = int(v)
	case int16:
		n = int(v)
	case int32:
		n = int(v)
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return floor, false
		}
		n = int(v)
	case uint:
		if v > math.MaxInt32 {
			return floor, false
		}
		n = int(v)
	case uint8:
		n = int(v)
	case uint16:
		n = int(v)
	case uint32:
		if v > math.MaxInt32 {
			return floor, false
		}
		n = int(v)
	case uint64:
		if v > math.MaxInt32 {
			return floor, false
		}
		n = int(v)
	case float32:
		return coerceFloat(float64(v), floor)
	case float64:
		return coerceFloat(v, floor)
	default:
		return floor, false
	}
	if n < floor {
		return floor, false
	}
	return n, true
}

func coerceFloat(f float64, floor int) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return floor, false
	}
	n := int(math.Trunc(f))
	if n < floor {
		return floor, false
	}
	return n, true
}
