package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "version", "format", "commands", "edit", "clear", "quit"}

// isCommandRune reports whether r may appear in a key command call, such as
// "extract_1".
func isCommandRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// commandBounds returns the key command being typed at cursor and its byte
// boundaries within input. ok is false unless the word directly follows sep,
// as "int" does in "hp!int".
func commandBounds(input string, cursor int, sep rune) (word string, start, end int, ok bool) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isCommandRune(r) {
			break
		}

		start -= size
	}

	if r, _ := utf8.DecodeLastRuneInString(input[:start]); start == 0 || r != sep {
		return "", cursor, cursor, false
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isCommandRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end, true
}

// fieldBounds returns the space-delimited field at cursor, its byte
// boundaries and its index among the fields of input.
func fieldBounds(input string, cursor int) (word string, start, end, index int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 && input[start-1] != ' ' {
		start--
	}

	end = cursor
	for end < len(input) && input[end] != ' ' {
		end++
	}

	index = len(strings.Fields(input[:start]))

	return input[start:end], start, end, index
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, and the word boundaries.
//
// In eval mode the candidates are key command names and are offered only
// after the command separator; an empty word lists them all. In control mode
// the first field completes control commands and the argument of format
// completes format names.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	var (
		word       string
		candidates []string
	)

	if m.mode == modeCtrl {
		var index int

		word, wordStart, wordEnd, index = fieldBounds(input, cursor)

		switch {
		case word == "":
			return nil, wordStart, wordEnd
		case index == 0:
			candidates = ctrlCommands
		case index == 1 && strings.HasPrefix(strings.TrimSpace(input), "format"):
			candidates = formats
		default:
			return nil, wordStart, wordEnd
		}
	} else {
		var ok bool

		word, wordStart, wordEnd, ok = commandBounds(input, cursor, m.parser.Grammar().SepFunc)
		if !ok {
			return nil, wordStart, wordEnd
		}

		candidates = m.parser.Commands().Names()

		if word == "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
