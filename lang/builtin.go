package lang

import (
	"math"
	"strconv"
	"strings"
)

// Names of the built-in commands that wrap values in a sequence.
const (
	CmdList  = "list"  // wrap unless already a sequence
	CmdDList = "dlist" // wrap mappings only
	CmdFList = "flist" // always wrap
)

// wrapCommands lists the commands that decide the boxing of a keyed value.
var wrapCommands = []string{CmdList, CmdDList, CmdFList}

func builtins() map[string]Command {
	return map[string]Command{
		"dummy":   CommandFunc(cmdDummy),
		"string":  CommandFunc(cmdString),
		"int":     CommandFunc(cmdInt),
		"float":   CommandFunc(cmdFloat),
		"json":    CommandFunc(cmdJSON),
		CmdList:   CommandFunc(cmdList),
		CmdDList:  CommandFunc(cmdDList),
		CmdFList:  CommandFunc(cmdFList),
		"extract": CommandFunc(cmdExtract),
		"get":     CommandFunc(cmdGet),
		"wrap":    CommandFunc(cmdWrap),
		"none":    CommandFunc(cmdNone),
		"null":    CommandFunc(cmdNone),
	}
}

func builtinShorthands() map[string]string {
	return map[string]string{
		"[]":  CmdDList,
		"()":  CmdList,
		"(!)": CmdFList,
		"{}":  CmdFList,
	}
}

func cmdDummy(v Value, _ Param) (Value, error) { return v, nil }

// cmdString converts scalars to their canonical text. Text and null pass
// through unchanged.
func cmdString(v Value, _ Param) (Value, error) {
	switch v.Kind() {
	case KindText, KindNull:
		return v, nil
	default:
		return Str(v.String()), nil
	}
}

func cmdInt(v Value, _ Param) (Value, error) {
	switch v.Kind() {
	case KindNumber:
		if i, ok := v.AsInt(); ok {
			return Int(i), nil
		}

		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, &CommandError{Reason: "number is not finite"}
		}

		return Int(int64(math.Trunc(f))), nil
	case KindBool:
		if b, _ := v.AsBool(); b {
			return Int(1), nil
		}

		return Int(0), nil
	case KindText:
		s, _ := v.AsText()

		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, &CommandError{Reason: "text is not an integer", Err: err}
		}

		return Int(i), nil
	default:
		return Value{}, &CommandError{Reason: "cannot convert " + v.Kind().String() + " to int"}
	}
}

func cmdFloat(v Value, _ Param) (Value, error) {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.AsFloat()

		return Float(f), nil
	case KindBool:
		if b, _ := v.AsBool(); b {
			return Float(1), nil
		}

		return Float(0), nil
	case KindText:
		s, _ := v.AsText()

		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, &CommandError{Reason: "text is not a number", Err: err}
		}

		return Float(f), nil
	default:
		return Value{}, &CommandError{Reason: "cannot convert " + v.Kind().String() + " to float"}
	}
}

// cmdJSON renders v as compact JSON text that template output writes
// without further quoting.
func cmdJSON(v Value, _ Param) (Value, error) {
	var sb strings.Builder

	writeJSON(&sb, v)

	return Verbatim(sb.String()), nil
}

func cmdList(v Value, _ Param) (Value, error) {
	if v.Kind() == KindSequence {
		return v, nil
	}

	return List(v), nil
}

func cmdDList(v Value, _ Param) (Value, error) {
	if v.Kind() == KindMapping {
		return List(v), nil
	}

	return v, nil
}

func cmdFList(v Value, _ Param) (Value, error) { return List(v), nil }

// cmdExtract unwraps a single-element sequence. With a parameter it behaves
// like get.
func cmdExtract(v Value, p Param) (Value, error) {
	if p.Valid {
		return cmdGet(v, p)
	}

	if v.Kind() == KindSequence && v.Len() == 1 {
		e, _ := v.Index(0)

		return e, nil
	}

	return v, nil
}

// cmdGet selects a sequence element by index or a mapping entry by key.
func cmdGet(v Value, p Param) (Value, error) {
	if !p.Valid {
		return Value{}, &CommandError{Reason: "missing index parameter"}
	}

	switch v.Kind() {
	case KindSequence:
		i, ok := p.Int()
		if !ok || i < 0 {
			return Value{}, &CommandError{Reason: "invalid index " + strconv.Quote(p.Text)}
		}

		e, ok := v.Index(i)
		if !ok {
			return Value{}, &CommandError{
				Reason: "index " + p.Text + " out of range (length " + strconv.Itoa(v.Len()) + ")",
			}
		}

		return e, nil
	case KindMapping:
		e, ok := v.Get(p.Text)
		if !ok {
			return Value{}, &CommandError{Reason: "key " + strconv.Quote(p.Text) + " not found"}
		}

		return e, nil
	default:
		return Value{}, &CommandError{Reason: "cannot index " + v.Kind().String()}
	}
}

// cmdWrap boxes v unless it is a sequence whose first element is already a
// sequence or mapping.
func cmdWrap(v Value, _ Param) (Value, error) {
	if first, ok := v.Index(0); ok && first.IsCompound() {
		return v, nil
	}

	return List(v), nil
}

// cmdNone turns empty text into null.
func cmdNone(v Value, _ Param) (Value, error) {
	if s, ok := v.AsText(); ok && s == "" {
		return Null(), nil
	}

	return v, nil
}
