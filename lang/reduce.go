package lang

import (
	"log/slog"

	"github.com/edwingeng/deque"
)

// pendingOp is an operator awaiting reduction, with the position it was
// written at.
type pendingOp struct {
	def *operatorDef
	pos Position
}

// engine reduces a flat sequence of operands and operators to a single
// value by operator precedence. Operands are pushed as they arrive;
// each operator first reduces every pending operator that binds at least
// as tightly.
type engine struct {
	values  deque.Deque // any
	waiting deque.Deque // *pendingOp
	current *pendingOp
	seen    bool // at least one item pushed
	lastOp  bool // most recent item was an operator
}

func newEngine() *engine {
	return &engine{
		values:  deque.NewDeque(),
		waiting: deque.NewDeque(),
	}
}

// pushValue adds an operand.
func (e *engine) pushValue(v any) {
	e.values.PushBack(v)
	e.seen = true
	e.lastOp = false
}

// pushOperator adds an operator. A symbol in prefix position (first item,
// or directly after another operator) takes its unary form.
func (e *engine) pushOperator(symbol string, pos Position) error {
	def, err := lookupOperator(symbol, !e.seen || e.lastOp)
	if err != nil {
		return WrapError(err).WithPosition(pos)
	}

	e.seen = true
	e.lastOp = true

	for e.current != nil && e.current.def.prec <= def.prec {
		// The ':' of a ternary joins the pending '?' instead of
		// starting a new operation.
		if e.current.def.arity == 3 && def.arity == 3 && def.symbol == ":" {
			return nil
		}

		if err := e.reduce(); err != nil {
			return err
		}
	}

	if e.current != nil {
		e.waiting.PushBack(e.current)
	}

	e.current = &pendingOp{def: def, pos: pos}

	return nil
}

// reduce applies the current operator to the topmost operands and
// resumes the most recently deferred operator.
func (e *engine) reduce() error {
	op := e.current

	if e.values.Len() < op.def.arity {
		return ErrEvaluation.
			With(slog.String("operator", op.def.symbol)).
			WithPosition(op.pos).
			Wrapf("operator %q expects %d operands, found %d",
				op.def.symbol, op.def.arity, e.values.Len())
	}

	args := make([]any, op.def.arity)
	for i := op.def.arity - 1; i >= 0; i-- {
		args[i] = e.values.PopBack()
	}

	v, err := op.def.apply(args)
	if err != nil {
		return locate(err, op.pos).With(slog.String("operator", op.def.symbol))
	}

	e.values.PushBack(v)
	e.current = e.popWaiting()

	return nil
}

func (e *engine) popWaiting() *pendingOp {
	if e.waiting.Empty() {
		return nil
	}

	op, _ := e.waiting.PopBack().(*pendingOp)

	return op
}

// finish reduces all remaining operators and returns the final operand,
// or nil if nothing was pushed.
func (e *engine) finish() (any, error) {
	if e.current == nil {
		e.current = e.popWaiting()
	}

	for e.current != nil {
		if err := e.reduce(); err != nil {
			return nil, err
		}
	}

	if e.values.Empty() {
		return nil, nil //nolint:nilnil // absent value
	}

	return e.values.Back(), nil
}

// locate attaches pos to err unless it already carries a position.
func locate(err error, pos Position) *Error {
	e := WrapError(err)
	if _, ok := e.Position(); ok {
		return e
	}

	return e.WithPosition(pos)
}
