package lang

import (
	"context"
	"log/slog"
)

// Parse parses source text into an [AST].
func Parse(src string, opts ...Option) (*AST, error) {
	return ParseString(context.Background(), src, opts...)
}

// ParseString parses an AST from a string. Trees are cached by source
// text, so parsing the same text again only applies opts.
func ParseString(ctx context.Context, s string, opts ...Option) (*AST, error) {
	ast := &AST{source: s}

	applyOptions(ast, opts...)

	ast.logger.TraceContext(ctx, "parse start", slog.Int("source_bytes", len(s)))

	root, cached, err := parseCached(s)
	if err != nil {
		ast.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	ast.Root = root

	ast.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(root.Body)),
		slog.Bool("cached", cached),
	)

	return ast, nil
}

// parser builds AST nodes from the lexer with one token of lookahead.
type parser struct {
	lex *lexer
}

func parseProgram(src string) (*Scope, error) {
	p := &parser{lex: newLexer(src)}

	return p.parseProgram()
}

func (p *parser) peek() (Token, error) { return p.lex.peek() }

func (p *parser) advance() (Token, error) { return p.lex.advance() }

func (p *parser) expect(text string) (Token, error) { return p.lex.expect(text) }

// parseProgram parses: statement* EOF.
func (p *parser) parseProgram() (*Scope, error) {
	scope := &Scope{Top: true, Position: Position{Line: 1, Column: 1}}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if tok.Kind == KindEOF {
			return scope, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if stmt != nil {
			scope.Body = append(scope.Body, stmt)
		}
	}
}

// parseBlock parses: '{' statement* '}'.
func (p *parser) parseBlock() (*Scope, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}

	scope := &Scope{Position: open.Pos}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Kind == KindEOF:
			return nil, unexpected(tok, "}")

		case tok.Kind == KindEndBracket && tok.Is("}"):
			_, _ = p.advance()

			return scope, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if stmt != nil {
			scope.Body = append(scope.Body, stmt)
		}
	}
}

// parseBody parses a braced block or exactly one statement wrapped in an
// implicit scope.
func (p *parser) parseBody() (*Scope, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindStartBracket && tok.Is("{") {
		return p.parseBlock()
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if stmt == nil {
		return nil, ErrSyntax.WithPosition(tok.Pos).
			Wrapf("expected statement, found %q", tok.Text)
	}

	return &Scope{Top: true, Body: []Node{stmt}, Position: tok.Pos}, nil
}

// parseStatement parses: if-stmt | while-stmt | block | simple-stmt ';'.
// A lone ';' is an empty statement and yields nil.
func (p *parser) parseStatement() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Kind == KindStatementEnd:
		_, _ = p.advance()

		return nil, nil

	case tok.IsKeyword(keywordIf):
		return p.parseIf()

	case tok.IsKeyword(keywordWhile):
		return p.parseWhile()

	case tok.IsKeyword(keywordFor), tok.IsKeyword(keywordForeach):
		return nil, ErrSyntax.WithPosition(tok.Pos).
			With(slog.String("keyword", tok.Text)).
			Wrapf("%q loops are not supported", tok.Text)

	case tok.Kind == KindStartBracket && tok.Is("{"):
		return p.parseBlock()
	}

	stmt, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseIf parses: 'if' simple body ('else' 'if' simple body)* ['else' body].
func (p *parser) parseIf() (*If, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}

	node := &If{Position: kw.Pos}

	if err := p.parseBranch(node); err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if !tok.IsKeyword(keywordElse) {
			return node, nil
		}

		_, _ = p.advance()

		tok, err = p.peek()
		if err != nil {
			return nil, err
		}

		if tok.IsKeyword(keywordIf) {
			_, _ = p.advance()

			if err := p.parseBranch(node); err != nil {
				return nil, err
			}

			continue
		}

		node.Else, err = p.parseBody()
		if err != nil {
			return nil, err
		}

		return node, nil
	}
}

func (p *parser) parseBranch(node *If) error {
	cond, err := p.parseCondition()
	if err != nil {
		return err
	}

	body, err := p.parseBody()
	if err != nil {
		return err
	}

	node.Conditions = append(node.Conditions, cond)
	node.Bodies = append(node.Bodies, body)

	return nil
}

// parseWhile parses: 'while' simple block.
func (p *parser) parseWhile() (*While, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &While{Condition: cond, Body: body, Position: kw.Pos}, nil
}

// parseSimple parses: ['let'] calc ['=' calc], or the same wrapped in
// parentheses.
func (p *parser) parseSimple() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindStartBracket && tok.Is("(") {
		return p.parseGroupStatement(true)
	}

	let := tok.IsKeyword(keywordLet)
	if let {
		_, _ = p.advance()
	}

	target, err := p.parseCalc()
	if err != nil {
		return nil, err
	}

	return p.finishSimple(tok.Pos, let, target)
}

func (p *parser) finishSimple(pos Position, let bool, target Node) (Node, error) {
	stmt := target

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindAssign {
		_, _ = p.advance()

		value, err := p.parseCalc()
		if err != nil {
			return nil, err
		}

		stmt = &Assign{Target: target, Value: value, Position: target.Pos()}
	}

	if let {
		stmt = &Declare{Inner: stmt, Position: pos}
	}

	return stmt, nil
}

// parseCondition parses the condition of an if or while. A parenthesized
// condition ends at its closing parenthesis, so a braceless body may begin
// with a prefix operator.
func (p *parser) parseCondition() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindStartBracket && tok.Is("(") {
		return p.parseGroupStatement(false)
	}

	return p.parseSimple()
}

// parseGroupStatement parses a parenthesized simple statement. When
// continued is set, a group followed by an operator, selector or
// assignment is the first element of a longer expression instead.
func (p *parser) parseGroupStatement(continued bool) (Node, error) {
	open, err := p.advance()
	if err != nil {
		return nil, err
	}

	inner, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	if !continued {
		return inner, nil
	}

	switch inner.(type) {
	case *Declare, *Assign:
		return inner, nil
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind != KindOperator && tok.Kind != KindMemberDot &&
		!(tok.Kind == KindStartBracket && tok.Is("[")) &&
		tok.Kind != KindAssign {
		return inner, nil
	}

	if chain, ok := inner.(*ValueChain); ok {
		quoted := *chain
		quoted.Quoted = true
		inner = &quoted
	}

	first, err := p.parseSelectors(inner)
	if err != nil {
		return nil, err
	}

	expr, err := p.continueCalc(open.Pos, []Node{first})
	if err != nil {
		return nil, err
	}

	return p.finishSimple(open.Pos, false, expr)
}

// endsChain reports whether tok terminates a value chain.
func endsChain(tok Token) bool {
	switch tok.Kind {
	case KindStatementEnd, KindAssign, KindSeparator, KindEndBracket, KindEOF:
		return true

	case KindKeyword:
		return !tok.IsBool()

	case KindStartBracket:
		return tok.Is("{")
	}

	return false
}

// parseCalc parses a value chain, collapsing a single element to itself.
func (p *parser) parseCalc() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	return p.continueCalc(tok.Pos, nil)
}

func (p *parser) continueCalc(pos Position, elems []Node) (Node, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		if endsChain(tok) {
			break
		}

		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		elems = append(elems, atom)
	}

	switch len(elems) {
	case 0:
		tok, _ := p.peek()

		return nil, unexpected(tok, "expression")

	case 1:
		return elems[0], nil
	}

	return &ValueChain{Elements: elems, Position: pos}, nil
}

// parseAtom parses one operand or operator of a value chain.
func (p *parser) parseAtom() (Node, error) {
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}

	var atom Node

	switch tok.Kind {
	case KindOperator:
		return &Operator{Symbol: tok.Text, Position: tok.Pos}, nil

	case KindKeyword: // only true/false reach here
		atom = &Constant{Kind: ConstBool, Text: tok.Text, Position: tok.Pos}

	case KindNumber:
		atom = &Constant{Kind: ConstNumber, Text: tok.Text, Position: tok.Pos}

	case KindString:
		atom = &Constant{Kind: ConstString, Text: tok.Text, Position: tok.Pos}

	case KindIdentifier:
		next, err := p.peek()
		if err != nil {
			return nil, err
		}

		if next.Kind == KindStartBracket && next.Is("(") {
			atom, err = p.parseCall(tok)
			if err != nil {
				return nil, err
			}
		} else {
			atom = &Variable{Name: tok.Text, Position: tok.Pos}
		}

	case KindStartBracket:
		if !tok.Is("(") {
			return nil, unexpected(tok, "expression")
		}

		atom, err = p.parseGroup(tok.Pos)
		if err != nil {
			return nil, err
		}

	default:
		return nil, unexpected(tok, "expression")
	}

	return p.parseSelectors(atom)
}

// parseGroup parses the rest of '(' calc ')'.
func (p *parser) parseGroup(pos Position) (Node, error) {
	inner, err := p.parseCalc()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	if chain, ok := inner.(*ValueChain); ok {
		quoted := *chain
		quoted.Quoted = true
		quoted.Position = pos

		return &quoted, nil
	}

	return inner, nil
}

// parseCall parses the argument list of a function call.
func (p *parser) parseCall(name Token) (*FunctionCall, error) {
	args, err := p.parseList("(", ")")
	if err != nil {
		return nil, err
	}

	return &FunctionCall{Name: name.Text, Args: args, Position: name.Pos}, nil
}

// parseList parses: open [calc (',' calc)*] end.
func (p *parser) parseList(open, end string) ([]Node, error) {
	if _, err := p.expect(open); err != nil {
		return nil, err
	}

	var list []Node

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindEndBracket && tok.Is(end) {
		_, _ = p.advance()

		return list, nil
	}

	for {
		item, err := p.parseCalc()
		if err != nil {
			return nil, err
		}

		list = append(list, item)

		tok, err := p.advance()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Kind == KindSeparator:
			continue

		case tok.Kind == KindEndBracket && tok.Is(end):
			return list, nil
		}

		return nil, unexpected(tok, "',' or '"+end+"'")
	}
}

// parseSelectors parses any number of trailing '[' index ']' and
// '.' field selectors.
func (p *parser) parseSelectors(base Node) (Node, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Kind == KindStartBracket && tok.Is("["):
			sel, err := p.parseList("[", "]")
			if err != nil {
				return nil, err
			}

			if len(sel) != 1 {
				return nil, ErrSyntax.WithPosition(tok.Pos).
					With(slog.Int("selectors", len(sel))).
					Wrapf("index requires exactly one selector, found %d", len(sel))
			}

			base = NewAccessor(base, sel, true, tok.Pos)

		case tok.Kind == KindMemberDot:
			_, _ = p.advance()

			field, err := p.advance()
			if err != nil {
				return nil, err
			}

			if field.Kind != KindIdentifier {
				return nil, unexpected(field, "field name")
			}

			sel := []Node{&Variable{Name: field.Text, Position: field.Pos}}
			base = NewAccessor(base, sel, false, tok.Pos)

		default:
			return base, nil
		}
	}
}
