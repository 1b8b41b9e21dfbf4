// Package lang parses the intermediate format that game designers type into
// spreadsheet cells and turns it into structured values.
//
// # Notation
//
// A cell holds one or more blocks. Within a block, elements are separated by
// commas, and an element is a scalar, a nested block in braces, a raw text
// region in double quotes, or a keyed entry:
//
//	wool, meat, bone                  → ["wool", "meat", "bone"]
//	{10, 15, 20, sword_01, {4, 6, 8}} → [10, 15, 20, "sword_01", [4, 6, 8]]
//	stats = {health = 100, speed = 1.5}
//	"<color> has | begun"             → "<color> has | begun"
//	{a = 1} | {b = 2}                 → [{"a": 1}, {"b": 2}]
//
// A block containing any keyed entry is a mapping; its other elements are
// stored under their ordinal position ("0", "1", ...). A block of one
// element yields that element.
//
// # Key commands
//
// Keys may name commands after "!" that transform the parsed value before it
// is stored, as in "drops!list = wool". The suffixes "[]", "()", "(!)" and
// "{}" are shorthands for dlist, list, flist and flist. Under grammar
// version V1 every keyed value that names no wrapping command is passed
// through dlist, so mappings always arrive boxed in a sequence.
//
// # Symbols
//
// Every structural symbol is configurable through [Grammar]. Scalars are
// coerced: none, nan and null become null, true and false become booleans,
// and when numeric coercion is on, integer and float literals become numbers.
// Bracketed literals such as [1, 'two'] are evaluated as constants.
//
// # Errors
//
// Unbalanced brackets and unterminated raw regions fail the whole parse with
// a [*SyntaxError] that carries the position. Failing key commands return
// a [*CommandError]. Nesting beyond the configured depth returns
// [ErrDepthExceeded].
package lang
