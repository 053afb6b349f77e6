package lang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/scrip/log"
)

// Node is an element of the abstract syntax tree.
//
// The set of node types is closed: [Scope], [Declare], [Assign], [If],
// [While], [Variable], [Constant], [Operator], [ValueChain],
// [FunctionCall] and [Accessor]. Nodes are immutable after parsing.
type Node interface {
	Pos() Position
	node()
}

// Scope is a block of statements evaluated in its own environment.
// Top marks an implicit scope that was not written with braces: the whole
// program, or a single-statement body.
type Scope struct {
	Position
	Body []Node
	Top  bool
}

// Declare is a let binding. Inner is a [*Variable] (declaration without
// initializer) or an [*Assign] (declaration with initializer).
type Declare struct {
	Inner Node
	Position
}

// Assign stores the value of Value into the location named by Target.
type Assign struct {
	Target Node
	Value  Node
	Position
}

// If is a chain of conditional branches with an optional final else.
// len(Conditions) == len(Bodies).
type If struct {
	Else       *Scope
	Conditions []Node
	Bodies     []*Scope
	Position
}

// While repeats Body as long as Condition evaluates true.
type While struct {
	Condition Node
	Body      *Scope
	Position
}

// Variable names a binding in the environment.
type Variable struct {
	Name string
	Position
}

// ConstantKind classifies a [Constant] literal.
type ConstantKind int

const (
	ConstString ConstantKind = iota
	ConstNumber
	ConstBool
)

func (k ConstantKind) String() string {
	switch k {
	case ConstString:
		return "string"
	case ConstNumber:
		return "number"
	case ConstBool:
		return "bool"
	default:
		return fmt.Sprintf("ConstantKind(%d)", int(k))
	}
}

// Constant is a literal. Text is the literal exactly as written, without
// the quotes of a string literal.
type Constant struct {
	Text string
	Position
	Kind ConstantKind
}

// Operator is an operator symbol inside a [ValueChain]. Whether it acts as
// a unary, binary, prefix or postfix operator is decided during evaluation.
type Operator struct {
	Symbol string
	Position
}

// ValueChain is a flat run of operands and operators in source order.
// A chain always holds at least two elements. Quoted records that the
// chain was written inside parentheses.
type ValueChain struct {
	Elements []Node
	Position
	Quoted bool
}

// FunctionCall invokes a host-registered function.
type FunctionCall struct {
	Name string
	Args []Node
	Position
}

// Accessor selects a field (Indexed == false) or an element
// (Indexed == true) of the value referenced by Base.
type Accessor struct {
	Base     Node
	Selector []Node
	Position
	Indexed bool
}

// NewAccessor returns an Accessor node. It panics unless exactly one
// selector is given.
func NewAccessor(base Node, selector []Node, indexed bool, pos Position) *Accessor {
	if len(selector) != 1 {
		panic(fmt.Sprintf("accessor requires exactly one selector, got %d", len(selector)))
	}

	return &Accessor{Base: base, Selector: selector, Indexed: indexed, Position: pos}
}

func (*Scope) node()        {}
func (*Declare) node()      {}
func (*Assign) node()       {}
func (*If) node()           {}
func (*While) node()        {}
func (*Variable) node()     {}
func (*Constant) node()     {}
func (*Operator) node()     {}
func (*ValueChain) node()   {}
func (*FunctionCall) node() {}
func (*Accessor) node()     {}

// AST is a parsed program together with the options used to evaluate it.
type AST struct {
	Root   *Scope
	source string
	logger log.Logger
	funcs  *Registry
	access Access
	check  LoopCheck
}

// Option configures an [AST].
type Option func(*AST)

// WithLogger sets the logger used during parsing and evaluation.
func WithLogger(logger log.Logger) Option {
	return func(ast *AST) {
		ast.logger = logger.With(slog.String("pkg", "lang"))
	}
}

// WithFunctions sets the registry used to resolve function calls.
// A nil registry restores [DefaultRegistry].
func WithFunctions(reg *Registry) Option {
	return func(ast *AST) { ast.funcs = reg }
}

// WithAccess sets the host accessor used by field and index access.
// A nil accessor restores [HostAccess].
func WithAccess(acc Access) Option {
	return func(ast *AST) { ast.access = acc }
}

// WithLoopCheck installs a hook consulted before every loop iteration.
func WithLoopCheck(check LoopCheck) Option {
	return func(ast *AST) { ast.check = check }
}

func applyOptions(ast *AST, opts ...Option) {
	for _, opt := range opts {
		opt(ast)
	}

	if ast.funcs == nil {
		ast.funcs = DefaultRegistry()
	}

	if ast.access == nil {
		ast.access = HostAccess{}
	}
}

// Source returns the text the AST was parsed from.
func (ast *AST) Source() string { return ast.source }

// Statements returns the top-level statements of the program.
func (ast *AST) Statements() []Node {
	if ast.Root == nil {
		return nil
	}

	return ast.Root.Body
}

// Functions returns the registry used to resolve function calls.
func (ast *AST) Functions() *Registry { return ast.funcs }

// String renders the program back to source text.
func (ast *AST) String() string {
	var sb strings.Builder

	_ = ast.Format(&sb)

	return sb.String()
}
