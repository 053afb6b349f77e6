package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlPrefix introduces a control command at the prompt.
const ctrlPrefix = ":"

// ctrlCommands are the control commands, completed after [ctrlPrefix].
var ctrlCommands = []string{"clear", "edit", "help", "quit", "reset", "vars"}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier under the cursor and its byte offsets
// in input. The word is empty when the cursor does not touch one.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain ending just before wordStart:
// "cfg.server" for the word "po" in "x + cfg.server.po". It is empty when
// the word is not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix, ok := strings.CutSuffix(input[:wordStart], ".")
	if !ok {
		return ""
	}

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentRune(r) {
			break
		}

		pos -= size
	}

	chain := prefix[pos:]
	if chain == "" || strings.HasPrefix(chain, ".") || strings.HasSuffix(chain, ".") ||
		strings.Contains(chain, "..") {
		return ""
	}

	return chain
}

// inString reports whether offset lies inside a string literal. Strings
// have no escapes, so every quote toggles.
func inString(input string, offset int) bool {
	return strings.Count(input[:min(offset, len(input))], `"`)%2 == 1
}

// completion is the fuzzy match state for the word under the cursor.
type completion struct {
	matches   fuzzy.Matches
	wordStart int
	wordEnd   int
}

// complete computes the candidates for the word at cursor. Control
// commands complete after a leading colon; otherwise members complete
// after a dot and top-level names complete once a word is started.
func complete(s *Session, input string, cursor int) completion {
	word, start, end := wordBounds(input, cursor)
	c := completion{wordStart: start, wordEnd: end}

	if inString(input, start) {
		return c
	}

	var candidates []string

	switch {
	case strings.HasPrefix(input, ctrlPrefix):
		if start != len(ctrlPrefix) {
			return c
		}

		candidates = ctrlCommands

	default:
		if parent := parentPath(input, start); parent != "" {
			candidates = s.Members(parent)

			if word == "" {
				c.matches = make(fuzzy.Matches, len(candidates))
				for i, name := range candidates {
					c.matches[i] = fuzzy.Match{Str: name, Index: i}
				}

				return c
			}
		} else {
			candidates = s.Candidates()
		}
	}

	if word == "" || len(candidates) == 0 {
		return c
	}

	c.matches = fuzzy.Find(word, candidates)

	return c
}

// renderCandidateBar builds the single-line completion bar, cut short with
// an ellipsis where it would exceed width.
func renderCandidateBar(
	s *Session,
	matches fuzzy.Matches,
	selected int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, s.IsFunction(match.Str),
			tabActive && i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && (used+w > width || (!last && used+w+reserve > width)) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched runes
// highlighted. Functions carry a "()" suffix that completion does not
// insert.
func renderCandidate(match fuzzy.Match, function, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
