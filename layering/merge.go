package layering

import "reflect"

// Resolve merges layers and reports, per key, the level whose value won.
// Stronger levels replace weaker values wholesale; values are deep copied so
// the result never aliases a layer.
func Resolve[V any](layers ...Layer[V]) (map[string]V, map[string]Level) {
	ordered := Ordered(layers...)
	maps := make([]map[string]V, len(ordered))
	for i := range ordered {
		maps[i] = ordered[i].Values
	}
	merged := MergeLayers(maps...)
	winners := make(map[string]Level, len(merged))
	for key := range merged {
		for _, layer := range ordered {
			if _, ok := layer.Values[key]; ok {
				winners[key] = layer.Level
				break
			}
		}
	}
	return merged, winners
}

// MergeLayers composes maps ordered from strongest to weakest. A key present
// in a stronger map shadows the same key in every weaker map.
func MergeLayers[V any](layers ...map[string]V) map[string]V {
	merged := make(map[string]V)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = Clone(value)
		}
	}
	return merged
}

// Clone returns a deep copy of value. Maps, slices, arrays, pointers and
// exported struct fields are copied recursively.
func Clone[T any](value T) T {
	cloned := cloneValue(reflect.ValueOf(&value).Elem())
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	out, _ := cloned.Interface().(T)
	return out
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
