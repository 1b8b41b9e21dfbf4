package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Kind indicates the type of a Value.
type Kind uint8

const (
	// KindNull is the absent value. The zero Value is null.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is an integer or floating-point number.
	KindNumber
	// KindText is a string.
	KindText
	// KindSequence is an ordered list of values.
	KindSequence
	// KindMapping is an insertion-ordered map with unique text keys.
	KindMapping
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindSequence:
		return "Sequence"
	case KindMapping:
		return "Mapping"
	default:
		return "Unknown"
	}
}

// Value is a node of a parsed value tree.
//
// Values are immutable once built: the slices and mappings they hold must not
// be modified after construction.
type Value struct {
	kind Kind
	b    bool
	i    int64   // integer payload when !frac
	f    float64 // float payload when frac
	frac bool    // number was written in floating-point form
	s    string
	verb bool // text is emitted without quoting by formatters
	seq  []Value
	m    *Mapping
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer number.
func Int(i int64) Value { return Value{kind: KindNumber, i: i} }

// Float returns a floating-point number. It keeps its float form when
// formatted, so Float(6) is written as 6.0.
func Float(f float64) Value { return Value{kind: KindNumber, f: f, frac: true} }

// Str returns a text value.
func Str(s string) Value { return Value{kind: KindText, s: s} }

// Verbatim returns a text value that template output writes as-is, without
// quoting. It compares equal to Str(s).
func Verbatim(s string) Value { return Value{kind: KindText, s: s, verb: true} }

// IsVerbatim reports whether v is text created by [Verbatim].
func (v Value) IsVerbatim() bool { return v.kind == KindText && v.verb }

// List returns a sequence holding vs.
func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}

	return Value{kind: KindSequence, seq: vs}
}

// Map returns a mapping built from entries. Duplicate keys keep their first
// position and their last value.
func Map(entries ...Entry) Value {
	m := NewMapping(len(entries))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}

	return MapOf(m)
}

// MapOf returns a mapping value backed by m. A nil m yields an empty mapping.
func MapOf(m *Mapping) Value {
	if m == nil {
		m = NewMapping(0)
	}

	return Value{kind: KindMapping, m: m}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsFloat returns the number payload as a float64.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}

	if v.frac {
		return v.f, true
	}

	return float64(v.i), true
}

// AsInt returns the number payload as an int64 if it is integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}

	if !v.frac {
		return v.i, true
	}

	if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) ||
		v.f > math.MaxInt64 || v.f < math.MinInt64 {
		return 0, false
	}

	return int64(v.f), true
}

// IsFloat reports whether v is a number written in floating-point form.
func (v Value) IsFloat() bool { return v.kind == KindNumber && v.frac }

// AsText returns the text payload.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsList returns the elements of a sequence.
func (v Value) AsList() ([]Value, bool) { return v.seq, v.kind == KindSequence }

// AsMap returns the mapping payload.
func (v Value) AsMap() (*Mapping, bool) { return v.m, v.kind == KindMapping }

// IsCompound reports whether v is a sequence or a mapping.
func (v Value) IsCompound() bool {
	return v.kind == KindSequence || v.kind == KindMapping
}

// Len returns the number of elements of a sequence or mapping, the length
// of a text in bytes, and zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return v.m.Len()
	case KindText:
		return len(v.s)
	default:
		return 0
	}
}

// Index returns the i-th element of a sequence. Negative indices count from
// the end.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence {
		return Value{}, false
	}

	if i < 0 {
		i += len(v.seq)
	}

	if i < 0 || i >= len(v.seq) {
		return Value{}, false
	}

	return v.seq[i], true
}

// Get returns the value stored under key in a mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}

	return v.m.Get(key)
}

// Lookup resolves a dotted path such as "stats.health" or "drops.0".
// A mapping key containing dots is matched whole before the path is split.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}

	if r, ok := v.child(path); ok {
		return r, true
	}

	head, rest, found := strings.Cut(path, ".")
	if !found {
		return Value{}, false
	}

	r, ok := v.child(head)
	if !ok {
		return Value{}, false
	}

	return r.Lookup(rest)
}

func (v Value) child(key string) (Value, bool) {
	switch v.kind {
	case KindMapping:
		return v.m.Get(key)
	case KindSequence:
		i, err := strconv.Atoi(key)
		if err != nil {
			return Value{}, false
		}

		return v.Index(i)
	default:
		return Value{}, false
	}
}

// Truthy reports whether v counts as true in a conditional: null, false,
// zero, and empty text, sequences and mappings are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, _ := v.AsFloat()

		return f != 0
	case KindText, KindSequence, KindMapping:
		return v.Len() > 0
	default:
		return false
	}
}

// Equal reports whether v and o hold the same tree. Numbers compare by
// numeric value regardless of their written form.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if !v.frac && !o.frac {
			return v.i == o.i
		}

		a, _ := v.AsFloat()
		b, _ := o.AsFloat()

		return a == b
	case KindText:
		return v.s == o.s
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}

		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}

		return true
	case KindMapping:
		return v.m.Equal(o.m)
	default:
		return false
	}
}

// String returns the canonical text of v: text values unquoted, other
// scalars in their literal form and compound values as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return v.numberString()
	case KindText:
		return v.s
	default:
		var sb strings.Builder

		writeJSON(&sb, v)

		return sb.String()
	}
}

func (v Value) numberString() string {
	if !v.frac {
		return strconv.FormatInt(v.i, 10)
	}

	return formatFloat(v.f)
}

// formatFloat writes f so that it reads back as a float: integral values keep
// a trailing ".0".
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}

	abs := math.Abs(f)
	if abs >= 1e-4 && abs < 1e16 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return strconv.FormatFloat(f, 'e', -1, 64)
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", v.kind.String()),
		slog.String("value", v.String()),
	)
}
