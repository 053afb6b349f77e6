package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// signatures holds the parameter names of the host functions, keyed by
// lower-case name. A leading "..." marks a variadic parameter.
var signatures = map[string][]string{
	// process and path helpers
	"typeof":     {"v"},
	"getenv":     {"name"},
	"cwd":        {},
	"pathjoin":   {"...elem"},
	"pathabs":    {"path"},
	"pathprefix": {"list", "...prefix"},
	"exists":     {"path"},

	// expr-lang builtins
	"len":         {"v"},
	"abs":         {"n"},
	"ceil":        {"n"},
	"floor":       {"n"},
	"round":       {"n"},
	"int":         {"v"},
	"float":       {"v"},
	"string":      {"v"},
	"type":        {"v"},
	"max":         {"...n"},
	"min":         {"...n"},
	"sum":         {"array"},
	"mean":        {"array"},
	"median":      {"array"},
	"first":       {"array"},
	"last":        {"array"},
	"reverse":     {"array"},
	"uniq":        {"array"},
	"flatten":     {"array"},
	"concat":      {"...array"},
	"keys":        {"map"},
	"values":      {"map"},
	"get":         {"v", "key"},
	"join":        {"array", "separator"},
	"split":       {"string", "separator"},
	"splitafter":  {"string", "separator"},
	"replace":     {"string", "old", "new"},
	"repeat":      {"string", "n"},
	"indexof":     {"string", "substring"},
	"lastindexof": {"string", "substring"},
	"hasprefix":   {"string", "prefix"},
	"hassuffix":   {"string", "suffix"},
	"trim":        {"string", "...cutset"},
	"trimprefix":  {"string", "prefix"},
	"trimsuffix":  {"string", "suffix"},
	"upper":       {"string"},
	"lower":       {"string"},
	"tojson":      {"v"},
	"fromjson":    {"string"},
	"tobase64":    {"string"},
	"frombase64":  {"string"},
	"now":         {},
	"duration":    {"string"},
	"date":        {"string", "...layout"},
}

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is the innermost call whose argument list holds the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall finds the innermost open call before cursor and the
// zero-based index of the argument being typed. Parentheses and commas
// inside string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	type frame struct{ open, args int }

	var (
		stack  []frame
		quoted bool
	)

	for i, r := range input[:cursor] {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(':
			stack = append(stack, frame{open: i})
		case r == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case r == ',':
			if len(stack) > 0 {
				stack[len(stack)-1].args++
			}
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	nameStart := top.open
	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isIdentRune(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:top.open]
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.args, inCall: true}
}

// signature returns the display form of the named function and its
// parameters. Names resolve case-insensitively. Registered functions
// without a known parameter list render as "name(...)".
func signature(s *Session, name string) (string, []string, bool) {
	params, ok := signatures[strings.ToLower(name)]
	if !ok {
		if !s.IsFunction(name) {
			return "", nil, false
		}

		params = []string{"..."}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params, true
}

// renderSignatureHint renders name(params) with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if argIndex == i || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
