package cliparser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// DefaultTruthy lists the words accepted as boolean true.
	DefaultTruthy = []string{"true", "yes", "y", "on", "1", "high", "h", "da", "ja", "oui", "si", "sí"}
	// DefaultFalsey lists the words accepted as boolean false.
	DefaultFalsey = []string{"false", "no", "n", "off", "0", "low", "l", "nyet", "niet", "geen", "nein", "non"}
)

// coercer converts raw scanned values into declared option types.
type coercer struct {
	truthy map[string]struct{}
	falsey map[string]struct{}
}

func newCoercer(truthy, falsey []string) coercer {
	return coercer{
		truthy: wordSet(truthy),
		falsey: wordSet(falsey),
	}
}

func defaultCoercer() coercer {
	return newCoercer(DefaultTruthy, DefaultFalsey)
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[strings.ToLower(word)] = struct{}{}
	}
	return set
}

// coerce converts value into typ. Strings and lists pass through unchanged.
func (c coercer) coerce(typ OptionType, value any) (any, error) {
	switch typ {
	case TypeBoolean:
		return c.toBool(value)
	case TypeInteger:
		return toInt(value)
	case TypeList:
		return toList(value)
	default:
		return value, nil
	}
}

// coerceDefault is stricter than coerce: a string default must be a string and
// a list default must already be a sequence.
func (c coercer) coerceDefault(typ OptionType, value any) (any, error) {
	switch typ {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%v (%T) is not a string", value, value)
	case TypeList:
		if _, ok := value.(string); ok {
			return nil, fmt.Errorf("%q is not a list", value)
		}
		return toList(value)
	default:
		return c.coerce(typ, value)
	}
}

func (c coercer) toBool(value any) (any, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case string:
		word := strings.ToLower(typed)
		if _, ok := c.truthy[word]; ok {
			return true, nil
		}
		if _, ok := c.falsey[word]; ok {
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a recognized boolean", typed)
	default:
		return nil, fmt.Errorf("%v (%T) is not a boolean", value, value)
	}
}

func toInt(value any) (any, error) {
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int8:
		return int(typed), nil
	case int16:
		return int(typed), nil
	case int32:
		return int(typed), nil
	case int64:
		if typed < math.MinInt || typed > math.MaxInt {
			return nil, fmt.Errorf("%d overflows int", typed)
		}
		return int(typed), nil
	case uint8:
		return int(typed), nil
	case uint16:
		return int(typed), nil
	case uint32:
		if uint64(typed) > math.MaxInt {
			return nil, fmt.Errorf("%d overflows int", typed)
		}
		return int(typed), nil
	case uint:
		if uint64(typed) > math.MaxInt {
			return nil, fmt.Errorf("%d overflows int", typed)
		}
		return int(typed), nil
	case uint64:
		if typed > math.MaxInt {
			return nil, fmt.Errorf("%d overflows int", typed)
		}
		return int(typed), nil
	case float32:
		return floatToInt(float64(typed))
	case float64:
		return floatToInt(typed)
	case string:
		n, err := strconv.ParseInt(typed, 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("%q is not a base-10 integer", typed)
		}
		return int(n), nil
	default:
		return nil, fmt.Errorf("%v (%T) is not an integer", value, value)
	}
}

// floatToInt accepts whole floats inside the int range.
func floatToInt(value float64) (any, error) {
	if math.IsNaN(value) || math.Trunc(value) != value {
		return nil, fmt.Errorf("%v is not an integer", value)
	}
	if value < float64(math.MinInt) || value >= -float64(math.MinInt) {
		return nil, fmt.Errorf("%v overflows int", value)
	}
	return int(value), nil
}

func toList(value any) (any, error) {
	switch typed := value.(type) {
	case []string:
		return append([]string{}, typed...), nil
	case string:
		return []string{typed}, nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list element %v (%T) is not a string", item, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%v (%T) is not a list", value, value)
	}
}
