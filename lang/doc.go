// Package lang implements scrip, a small embeddable statement and
// expression language: a lexer, a recursive-descent parser producing a
// closed set of AST nodes, and a tree-walking evaluator that mutates a
// chain of [Environment] scopes.
//
// # Grammar
//
// Informal EBNF:
//
//	Program   → Statement* EOF
//	Block     → '{' Statement* '}'
//	Statement → If | While | Block | Simple ';' | ';'
//	If        → 'if' Simple Body ('else' 'if' Simple Body)* ('else' Body)?
//	While     → 'while' Simple Block
//	Body      → Block | Statement
//	Simple    → ['let'] Calc ['=' Calc]
//	Calc      → (Atom | Operator)+
//	Atom      → Literal | Identifier | Call | '(' Calc ')' (Selector)*
//	Call      → Identifier '(' (Calc (',' Calc)*)? ')'
//	Selector  → '.' Identifier | '[' Calc ']'
//
// Keywords (if, else, while, for, foreach, let, true, false) and
// operators are matched case-insensitively. for and foreach are reserved
// and rejected by the parser.
//
// # Expressions
//
// A run of operands and operators is kept flat in a [ValueChain] and
// reduced at evaluation time by operator precedence, lowest value binding
// tightest:
//
//	 1  a++ a--
//	 2  ++a --a +a -a !a  * / %
//	 3  + -
//	 4  << >> >>>
//	 5  < > <= >=
//	 6  == !=
//	 7  &
//	 8  ^
//	 9  |
//	10  && ||
//	12  ? :
//	13  = += -= *= /= %= &= |= <<= >>= >>>=
//
// Whether + - ++ and -- act as prefix or infix operators is decided by
// position: the prefix form applies at the start of a chain or directly
// after another operator.
//
// # Values
//
// Runtime values are ranked for promotion (see [Rank]):
//
//	BIT < INT < LONG < DECIMAL < FLOAT < DOUBLE < DATETIME < BOOLEAN < OBJECT < STRING
//
// The first operand seeds an operator's working type, and a later operand
// of higher rank raises it. A rank above DOUBLE collapses the working type
// to STRING, so 1 + true is "1true" while true + 1 is unsupported.
// Number literals parse as INT, then LONG, then DOUBLE.
//
// # Scoping
//
// Every block, if statement and loop body runs in a child scope. let
// fails if the name is declared anywhere in the active chain, so inner
// scopes cannot shadow outer ones. expose(a, b) moves bindings from the
// current scope into its parent; it is the only way a value outlives its
// block:
//
//	let a = 1;
//	let b = 5;
//	b = a + b;
//	expose(a, b);
//
// Evaluating the program above against a root [Environment] leaves a = 1
// and b = 6 in the root.
//
// # Host integration
//
// Function calls resolve through a [Registry] ([DefaultRegistry] unless
// [WithFunctions] is given). Field and index access on host values goes
// through an [Access] implementation ([HostAccess] by default). Loops
// consult an optional [LoopCheck] so embedders can bound runaway programs.
package lang
