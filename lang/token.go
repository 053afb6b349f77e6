package lang

import (
	"strconv"
	"strings"
)

// Position identifies a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in runes
}

// Pos returns p. Embedding Position gives every AST node its location.
func (p Position) Pos() Position { return p }

// String returns "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// Kind classifies a [Token].
type Kind int

const (
	KindIdentifier Kind = iota
	KindOperator
	KindKeyword
	KindString
	KindNumber
	KindStartBracket
	KindEndBracket
	KindSeparator
	KindAssign
	KindMemberDot
	KindStatementEnd
	KindEOF
)

var kindName = [...]string{
	KindIdentifier:   "identifier",
	KindOperator:     "operator",
	KindKeyword:      "keyword",
	KindString:       "string",
	KindNumber:       "number",
	KindStartBracket: "start-bracket",
	KindEndBracket:   "end-bracket",
	KindSeparator:    "separator",
	KindAssign:       "assign",
	KindMemberDot:    "member-dot",
	KindStatementEnd: "statement-end",
	KindEOF:          "end-of-input",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindName) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindName[k]
}

// Reserved words. Matching is case-insensitive.
const (
	keywordIf      = "if"
	keywordElse    = "else"
	keywordWhile   = "while"
	keywordFor     = "for"
	keywordForeach = "foreach"
	keywordLet     = "let"
	keywordTrue    = "true"
	keywordFalse   = "false"
)

// Keywords returns the reserved words of the language.
func Keywords() []string {
	return []string{
		keywordIf, keywordElse, keywordWhile, keywordFor,
		keywordForeach, keywordLet, keywordTrue, keywordFalse,
	}
}

func isKeyword(s string) bool {
	for _, kw := range Keywords() {
		if strings.EqualFold(s, kw) {
			return true
		}
	}

	return false
}

// Token is an immutable (kind, text) pair produced by the lexer.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// Is reports whether the token text equals s, ignoring case.
func (t Token) Is(s string) bool { return strings.EqualFold(t.Text, s) }

// Equal reports whether t and u have the same kind and case-insensitively
// equal text. Positions are ignored.
func (t Token) Equal(u Token) bool { return t.Kind == u.Kind && t.Is(u.Text) }

// IsKeyword reports whether t is the reserved word kw.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == KindKeyword && t.Is(kw)
}

// IsBool reports whether t is one of the boolean keywords.
func (t Token) IsBool() bool {
	return t.IsKeyword(keywordTrue) || t.IsKeyword(keywordFalse)
}

func (t Token) String() string {
	if t.Kind == KindEOF {
		return t.Kind.String()
	}

	return t.Kind.String() + " " + strconv.Quote(t.Text)
}
