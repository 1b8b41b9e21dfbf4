package lang

import (
	"errors"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// errNotLiteral marks expressions that reference anything but constants.
var errNotLiteral = errors.New("not a literal")

// parseLeaf coerces a trimmed scalar token.
func (g Grammar) parseLeaf(s string) Value {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "none", "nan", "null":
		return Null()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	if !g.ToNum {
		return Str(s)
	}

	if v, ok := parseNumber(s); ok {
		return v
	}

	if isLiteralCandidate(s) {
		if v, err := evalLiteral(s); err == nil {
			return v
		}
	}

	return Str(s)
}

// parseNumber recognizes integer literals (with optional 0x, 0o or 0b
// prefix and underscore digit separators) and decimal floats. Decimal
// integers with leading zeros, such as "010", are not numbers.
func parseNumber(s string) (Value, bool) {
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" {
		return Value{}, false
	}

	if !isDigit(body[0]) && (body[0] != '.' || len(body) < 2 || !isDigit(body[1])) {
		return Value{}, false
	}

	i, err := strconv.ParseInt(s, 0, 64)

	switch {
	case hasLeadingZero(body) && strings.Trim(body, "0123456789_") == "":
		return Value{}, false
	case err == nil:
		return Int(i), true
	case errors.Is(err, strconv.ErrRange):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f), true
		}
	}

	if strings.ContainsAny(body, "xXpP_") {
		return Value{}, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}

	return Float(f), true
}

// hasLeadingZero reports a decimal integer such as "010"; "0" and "000" are
// accepted as zero.
func hasLeadingZero(body string) bool {
	if len(body) < 2 || body[0] != '0' || !isDigit(body[1]) {
		return false
	}

	return strings.Trim(body, "0_") != ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isLiteralCandidate reports tokens that may be list or quoted string
// literals, like "[1, 'two']" or "'three'".
func isLiteralCandidate(s string) bool {
	if len(s) < 2 {
		return false
	}

	return (s[0] == '[' && s[len(s)-1] == ']') ||
		(s[0] == '\'' && s[len(s)-1] == '\'')
}

// literalVisitor rejects any expression node that is not a constant.
type literalVisitor struct{ err error }

func (v *literalVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ArrayNode, *ast.MapNode, *ast.PairNode:
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			v.err = errNotLiteral
		}
	default:
		v.err = errNotLiteral
	}
}

// evalLiteral evaluates a constant list, map or string expression.
func evalLiteral(s string) (Value, error) {
	tree, err := parser.Parse(s)
	if err != nil {
		return Value{}, err
	}

	var lv literalVisitor

	ast.Walk(&tree.Node, &lv)

	if lv.err != nil {
		return Value{}, lv.err
	}

	env := map[string]any{}

	program, err := expr.Compile(s, expr.Env(env))
	if err != nil {
		return Value{}, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return Value{}, err
	}

	return FromNative(out)
}
