package lang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// operatorChars is the set of characters that form operator tokens.
const operatorChars = "+-*/%&|$!~^><=?:"

// punctuation maps single-character tokens to their kind.
var punctuation = map[rune]Kind{
	'(': KindStartBracket,
	'[': KindStartBracket,
	'{': KindStartBracket,
	')': KindEndBracket,
	']': KindEndBracket,
	'}': KindEndBracket,
	',': KindSeparator,
	'.': KindMemberDot,
	';': KindStatementEnd,
}

func isOperatorChar(r rune) bool { return strings.ContainsRune(operatorChars, r) }

func isNumberChar(r rune) bool {
	return (r >= '0' && r <= '9') ||
		r == '-' || r == '+' || r == '.' || r == 'e' || r == 'E'
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lexer converts source text into tokens on demand.
//
// It buffers at most one token so that peek does not consume input.
type lexer struct {
	input  string
	pos    int
	line   int
	col    int
	next   *Token
	ended  bool
	ending Token
}

func newLexer(src string) *lexer {
	return &lexer{input: src, line: 1, col: 1}
}

// Tokenize returns every token of src, ending with a single
// [KindEOF] token.
func Tokenize(src string) ([]Token, error) {
	lx := newLexer(src)

	var tokens []Token

	for {
		tok, err := lx.advance()
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == KindEOF {
			return tokens, nil
		}
	}
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (Token, error) {
	if l.next != nil {
		return *l.next, nil
	}

	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}

	l.next = &tok

	return tok, nil
}

// advance consumes and returns the next token.
func (l *lexer) advance() (Token, error) {
	if l.next != nil {
		tok := *l.next
		l.next = nil

		return tok, nil
	}

	return l.scan()
}

// expect consumes the next token, failing unless its text equals text
// (ignoring case).
func (l *lexer) expect(text string) (Token, error) {
	tok, err := l.advance()
	if err != nil {
		return tok, err
	}

	if tok.Kind == KindEOF || !tok.Is(text) {
		return tok, unexpected(tok, text)
	}

	return tok, nil
}

func unexpected(tok Token, expected string) *Error {
	return ErrSyntax.WithPosition(tok.Pos).
		With(
			slog.String("expected", expected),
			slog.String("actual", tok.Text),
		).
		Wrapf("expected %s, found %s", expected, tok)
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *lexer) peekRune() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return r
}

func (l *lexer) peekRuneAt(n int) rune {
	off := l.pos
	for range n {
		if off >= len(l.input) {
			return 0
		}

		_, size := utf8.DecodeRuneInString(l.input[off:])
		off += size
	}

	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexer) step() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) skipWhitespace() {
	for !l.eof() {
		switch l.peekRune() {
		case ' ', '\t', '\r', '\n':
			l.step()
		default:
			return
		}
	}
}

func (l *lexer) scanWhile(fn func(rune) bool) string {
	start := l.pos
	for !l.eof() && fn(l.peekRune()) {
		l.step()
	}

	return l.input[start:l.pos]
}

func (l *lexer) scan() (Token, error) {
	if l.ended {
		return l.ending, nil
	}

	l.skipWhitespace()

	pos := l.position()

	if l.eof() {
		l.ended = true
		l.ending = Token{Kind: KindEOF, Pos: pos}

		return l.ending, nil
	}

	r := l.peekRune()

	switch {
	case isIdentStart(r):
		text := l.scanWhile(isIdentChar)
		if isKeyword(text) {
			return Token{Kind: KindKeyword, Text: text, Pos: pos}, nil
		}

		return Token{Kind: KindIdentifier, Text: text, Pos: pos}, nil

	case isOperatorChar(r):
		if r == '=' && l.peekRuneAt(1) != '=' {
			l.step()

			return Token{Kind: KindAssign, Text: "=", Pos: pos}, nil
		}

		text := l.scanWhile(isOperatorChar)

		return Token{Kind: KindOperator, Text: text, Pos: pos}, nil

	case r >= '0' && r <= '9':
		text := l.scanWhile(isNumberChar)

		return Token{Kind: KindNumber, Text: text, Pos: pos}, nil

	case r == '"':
		return l.scanString(pos)
	}

	kind, ok := punctuation[r]
	if !ok {
		return Token{}, ErrLex.WithPosition(pos).
			With(slog.String("char", string(r))).
			Wrapf("invalid character %q", r)
	}

	l.step()

	return Token{Kind: kind, Text: string(r), Pos: pos}, nil
}

func (l *lexer) scanString(pos Position) (Token, error) {
	l.step() // opening quote

	start := l.pos
	for !l.eof() {
		switch l.peekRune() {
		case '"':
			text := l.input[start:l.pos]
			l.step()

			return Token{Kind: KindString, Text: text, Pos: pos}, nil

		case '\r', '\n':
			return Token{}, ErrLex.WithPosition(pos).
				Wrapf("unterminated string literal")
		}

		l.step()
	}

	return Token{}, ErrLex.WithPosition(pos).Wrapf("unterminated string literal")
}
