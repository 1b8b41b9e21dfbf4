package lang

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
)

// FromNative converts a Go value into a Value. It accepts the shapes
// produced by decoders and expression evaluation: nil, booleans, integer and
// float kinds, strings, slices, maps with string keys (keys sorted) and
// ordered yaml.MapSlice.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Mapping:
		return MapOf(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return Value{}, ErrDecode.Wrap(err)
		}

		return Float(f), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []any:
		seq := make([]Value, len(t))
		for i, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			seq[i] = v
		}

		return List(seq...), nil
	case yaml.MapSlice:
		m := NewMapping(len(t))
		for _, item := range t {
			v, err := FromNative(item.Value)
			if err != nil {
				return Value{}, err
			}

			m.Set(nativeKey(item.Key), v)
		}

		return MapOf(m), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		m := NewMapping(len(keys))
		for _, k := range keys {
			v, err := FromNative(t[k])
			if err != nil {
				return Value{}, err
			}

			m.Set(k, v)
		}

		return MapOf(m), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}

		return Int(int64(u)), nil
	case reflect.Slice, reflect.Array:
		seq := make([]Value, rv.Len())
		for i := range rv.Len() {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			seq[i] = v
		}

		return List(seq...), nil
	case reflect.Map:
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))

		for i, k := range keys {
			names[i] = nativeKey(k.Interface())
			byName[names[i]] = k
		}

		slices.Sort(names)

		m := NewMapping(len(names))
		for _, name := range names {
			v, err := FromNative(rv.MapIndex(byName[name]).Interface())
			if err != nil {
				return Value{}, err
			}

			m.Set(name, v)
		}

		return MapOf(m), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return FromNative(rv.Elem().Interface())
	}

	return Value{}, ErrUnsupportedType.With(slog.String("type", rv.Type().String()))
}

func nativeKey(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(k)
	}
}

// Native converts v into plain Go values: nil, bool, int64, float64,
// string, []any and yaml.MapSlice for mappings, which keeps key order.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.frac {
			return v.f
		}

		return v.i
	case KindText:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Native()
		}

		return out
	case KindMapping:
		out := make(yaml.MapSlice, 0, v.m.Len())
		for k, e := range v.m.All() {
			out = append(out, yaml.MapItem{Key: k, Value: e.Native()})
		}

		return out
	default:
		return nil
	}
}
