package lang

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/scrip/log"
)

// exposeFunc is the name of the call that hoists bindings into the
// enclosing scope. It is handled by the evaluator, not the registry.
const exposeFunc = "expose"

// Evaluate runs the program against env and returns it. The program body
// runs in a child scope of env, so only names hoisted with expose remain
// in env afterward. A nil env evaluates against a new root environment.
//
// On failure the returned environment holds whatever was hoisted before
// the error.
func (ast *AST) Evaluate(ctx context.Context, env *Environment) (*Environment, error) {
	if env == nil {
		env = NewEnvironment()
	}

	if ast.Root == nil {
		return env, nil
	}

	ast.logger.TraceContext(ctx, "evaluate start",
		slog.Int("statement_count", len(ast.Root.Body)),
	)

	if _, err := ast.evaluator(ctx).eval(ast.Root, env); err != nil {
		ast.logger.TraceContext(ctx, "evaluate failed", slog.Any("error", err))

		return env, err
	}

	ast.logger.TraceContext(ctx, "evaluate complete",
		slog.Int("root_bindings", len(env.Names())),
	)

	return env, nil
}

// Evaluate runs ast against root. See [AST.Evaluate].
func Evaluate(ctx context.Context, root *Environment, ast *AST) (*Environment, error) {
	return ast.Evaluate(ctx, root)
}

// EvaluateInline runs the top-level statements directly in env, without
// the implicit program scope, and returns the value of the last
// statement. Declarations therefore persist in env, which suits
// interactive sessions that evaluate one line at a time.
func (ast *AST) EvaluateInline(ctx context.Context, env *Environment) (any, error) {
	if env == nil {
		return nil, ErrEvaluation.Wrapf("no environment")
	}

	ev := ast.evaluator(ctx)

	var last any

	for _, stmt := range ast.Statements() {
		v, err := ev.eval(stmt, env)
		if err != nil {
			return nil, err
		}

		last = v
	}

	v, err := deref(last)
	if err != nil {
		return nil, fail(ast.Statements()[len(ast.Statements())-1], err)
	}

	return v, nil
}

// evaluator walks one program. It is not reused across evaluations.
type evaluator struct {
	ctx    context.Context
	logger log.Logger
	funcs  *Registry
	access Access
	check  LoopCheck
	depth  int
}

func (ast *AST) evaluator(ctx context.Context) *evaluator {
	return &evaluator{
		ctx:    ctx,
		logger: ast.logger,
		funcs:  ast.funcs,
		access: ast.access,
		check:  ast.check,
	}
}

// eval returns the value of n. Variables and accessors yield a
// [*Reference]; every other node yields a plain value or nil.
func (ev *evaluator) eval(n Node, env *Environment) (any, error) {
	var (
		v   any
		err error
	)

	switch n := n.(type) {
	case *Scope:
		v, err = ev.evalScope(n, env)
	case *Declare:
		v, err = ev.evalDeclare(n, env)
	case *Assign:
		v, err = ev.evalAssign(n, env, false)
	case *If:
		v, err = ev.evalIf(n, env)
	case *While:
		v, err = ev.evalWhile(n, env)
	case *ValueChain:
		v, err = ev.evalChain(n, env)
	case *Constant:
		v, err = evalConstant(n)
	case *FunctionCall:
		v, err = ev.evalCall(n, env)
	case *Accessor:
		v, err = ev.evalAccessor(n, env)
	case *Variable:
		v = NamedReference(env, n.Name)
	case *Operator:
		err = ErrEvaluation.With(slog.String("operator", n.Symbol)).
			Wrapf("operator %q outside of an expression", n.Symbol)
	default:
		err = ErrEvaluation.Wrapf("unknown node %T", n)
	}

	if err != nil {
		return nil, fail(n, err)
	}

	return v, nil
}

// fail locates err at n and records the source of the innermost
// non-block expression that failed.
func fail(n Node, err error) error {
	e := locate(err, n.Pos())

	if _, ok := e.Attr("expr"); !ok && !isContainer(n) {
		e = e.With(slog.String("expr", Render(n)))
	}

	return e
}

func (ev *evaluator) evalScope(n *Scope, env *Environment) (any, error) {
	inner := env.Child()

	ev.depth++
	ev.logger.TraceContext(ev.ctx, "scope push", slog.Int("depth", ev.depth))

	defer func() {
		ev.logger.TraceContext(ev.ctx, "scope pop",
			slog.Int("depth", ev.depth),
			slog.Int("bindings", len(inner.vars)),
		)
		ev.depth--
	}()

	for _, stmt := range n.Body {
		if _, err := ev.eval(stmt, inner); err != nil {
			return nil, err
		}
	}

	return nil, nil //nolint:nilnil // blocks have no value
}

func (ev *evaluator) evalDeclare(n *Declare, env *Environment) (any, error) {
	switch inner := n.Inner.(type) {
	case *Variable:
		if err := env.Declare(inner.Name, nil); err != nil {
			return nil, err
		}

		ev.logger.TraceContext(ev.ctx, "declare", slog.String("name", inner.Name))

		return nil, nil //nolint:nilnil // declared without a value

	case *Assign:
		return ev.evalAssign(inner, env, true)
	}

	return nil, ErrType.Wrapf("cannot declare %s", Render(n.Inner))
}

func (ev *evaluator) evalAssign(n *Assign, env *Environment, declare bool) (any, error) {
	target, err := ev.eval(n.Target, env)
	if err != nil {
		return nil, err
	}

	ref, ok := target.(*Reference)
	if !ok {
		return nil, ErrType.
			With(slog.String("type", RankOf(target).String())).
			Wrapf("cannot assign to %s", Render(n.Target))
	}

	if declare {
		if ref.parent != nil {
			return nil, ErrType.Wrapf("cannot declare member %s", ref)
		}

		ref.declare = true
	}

	v, err := ev.eval(n.Value, env)
	if err != nil {
		return nil, err
	}

	if v, err = deref(v); err != nil {
		return nil, fail(n.Value, err)
	}

	if err := ref.Assign(v); err != nil {
		return nil, err
	}

	ev.logger.TraceContext(ev.ctx, "assign",
		slog.String("target", ref.String()),
		slog.Bool("declare", declare),
		slog.String("type", RankOf(v).String()),
	)

	return v, nil
}

// condition evaluates n and requires a BOOLEAN result.
func (ev *evaluator) condition(n Node, env *Environment) (bool, error) {
	v, err := ev.eval(n, env)
	if err != nil {
		return false, err
	}

	if v, err = deref(v); err != nil {
		return false, fail(n, err)
	}

	b, ok := v.(bool)
	if !ok {
		return false, fail(n, ErrType.
			With(slog.String("type", RankOf(v).String())).
			Wrapf("condition must be BOOLEAN, found %s", RankOf(v)))
	}

	return b, nil
}

func (ev *evaluator) evalIf(n *If, env *Environment) (any, error) {
	inner := env.Child()

	for i, cond := range n.Conditions {
		ok, err := ev.condition(cond, inner)
		if err != nil {
			return nil, err
		}

		if ok {
			ev.logger.TraceContext(ev.ctx, "branch taken", slog.Int("branch", i))

			return ev.eval(n.Bodies[i], inner)
		}
	}

	if n.Else != nil {
		ev.logger.TraceContext(ev.ctx, "branch taken", slog.String("branch", "else"))

		return ev.eval(n.Else, inner)
	}

	return nil, nil //nolint:nilnil // no branch taken
}

func (ev *evaluator) evalWhile(n *While, env *Environment) (any, error) {
	for i := 0; ; i++ {
		ok, err := ev.condition(n.Condition, env)
		if err != nil {
			return nil, err
		}

		if !ok {
			ev.logger.TraceContext(ev.ctx, "loop done", slog.Int("iterations", i))

			return nil, nil //nolint:nilnil // loops have no value
		}

		if ev.check != nil {
			if err := ev.check(ev.ctx, i); err != nil {
				return nil, WrapError(err).With(slog.Int("iteration", i))
			}
		}

		if _, err := ev.eval(n.Body, env); err != nil {
			return nil, err
		}
	}
}

func (ev *evaluator) evalChain(n *ValueChain, env *Environment) (any, error) {
	eng := newEngine()

	for _, el := range n.Elements {
		if op, ok := el.(*Operator); ok {
			if err := eng.pushOperator(op.Symbol, op.Pos()); err != nil {
				return nil, err
			}

			continue
		}

		v, err := ev.eval(el, env)
		if err != nil {
			return nil, err
		}

		eng.pushValue(v)
	}

	v, err := eng.finish()
	if err != nil {
		return nil, err
	}

	if v, err = deref(v); err != nil {
		return nil, err
	}

	ev.logger.TraceContext(ev.ctx, "reduce",
		slog.Int("elements", len(n.Elements)),
		slog.String("type", RankOf(v).String()),
	)

	return v, nil
}

func evalConstant(n *Constant) (any, error) {
	switch n.Kind {
	case ConstBool:
		return strings.EqualFold(n.Text, keywordTrue), nil
	case ConstNumber:
		return parseNumber(n.Text)
	case ConstString:
		return n.Text, nil
	}

	return nil, ErrLiteral.Wrapf("unknown constant kind %s", n.Kind)
}

func (ev *evaluator) evalCall(n *FunctionCall, env *Environment) (any, error) {
	if strings.EqualFold(n.Name, exposeFunc) {
		return nil, ev.expose(n, env)
	}

	fn, err := ev.funcs.Resolve(n.Name)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(n.Args))

	for i, arg := range n.Args {
		v, err := ev.eval(arg, env)
		if err != nil {
			return nil, err
		}

		if args[i], err = deref(v); err != nil {
			return nil, fail(arg, err)
		}
	}

	ev.logger.TraceContext(ev.ctx, "call",
		slog.String("function", n.Name),
		slog.Int("args", len(args)),
	)

	return ev.call(n.Name, fn, args)
}

// call invokes fn, turning a panic in host code into an error.
func (ev *evaluator) call(name string, fn Function, args []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, ErrEvaluation.With(slog.String("function", name)).
				Wrap(fmt.Errorf("%s: %v", name, r))
		}
	}()

	v, err = fn(ev.ctx, args...)
	if err != nil {
		if e := WrapError(err); e.kind != nil {
			return nil, e.With(slog.String("function", name))
		}

		return nil, ErrEvaluation.With(slog.String("function", name)).Wrap(err)
	}

	return v, nil
}

func (ev *evaluator) expose(n *FunctionCall, env *Environment) error {
	for _, arg := range n.Args {
		v, ok := arg.(*Variable)
		if !ok {
			return fail(arg, ErrType.Wrapf("expose takes variable names, found %s",
				Render(arg)))
		}

		if err := env.Expose(v.Name); err != nil {
			return fail(arg, err)
		}

		ev.logger.TraceContext(ev.ctx, "expose", slog.String("name", v.Name))
	}

	return nil
}

func (ev *evaluator) evalAccessor(n *Accessor, env *Environment) (any, error) {
	base, err := ev.eval(n.Base, env)
	if err != nil {
		return nil, err
	}

	ref, ok := base.(*Reference)
	if !ok {
		return nil, ErrType.
			With(slog.String("type", RankOf(base).String())).
			Wrapf("cannot select from %s", Render(n.Base))
	}

	var sel any

	if field, ok := n.Selector[0].(*Variable); ok && !n.Indexed {
		sel = field.Name
	} else {
		v, err := ev.eval(n.Selector[0], env)
		if err != nil {
			return nil, err
		}

		if sel, err = deref(v); err != nil {
			return nil, fail(n.Selector[0], err)
		}
	}

	return ref.derive(sel, n.Indexed, ev.access), nil
}
