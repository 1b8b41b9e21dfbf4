// Package tmpl renders text templates from structured values, typically
// the values parsed from spreadsheet cells by package lang.
//
// # Placeholders
//
// A placeholder names a dotted key path into the render data and may apply
// key commands to the value found there:
//
//	"hp": {% stats.health %},
//	"loot": {% loot!list %}
//
// Text values are written as JSON strings unless [WithStrip] is set; other
// values are written as JSON.
//
// # Control Tags
//
//	{% if key %} … {% endif %}            body kept when key is truthy
//	{% foreach key %} … {% endforeach %}  body repeated per element, $item bound
//	{% for key %} … {% endfor %}          body repeated key times, $i bound
//	{% comment %} … {% endcomment %}      removed
//	{# … #}                               removed
//
// Inside a loop, "{% $item!get_0 %}" resolves against the current element
// and "$i" may appear within keys and commands, as in "{% cargo_$i %}".
// Loop output drops the leading whitespace of each pass and one trailing
// comma, so a body ending in "," renders a valid JSON list.
//
// Further tags are added with [Engine.RegisterBlock] or [WithBlock].
//
// # Missing Keys
//
// By default a missing key renders as empty text and skips its commands.
// [WithStrict] turns it into a [*MissingKeyError].
package tmpl
