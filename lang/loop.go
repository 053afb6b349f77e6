package lang

import (
	"context"
	"log/slog"
)

// LoopCheck is consulted before each iteration of a while loop, counting
// from zero. A non-nil error aborts evaluation.
type LoopCheck func(ctx context.Context, iteration int) error

// LoopLimit allows at most n iterations per loop. A limit of zero or less
// returns nil, meaning no check.
func LoopLimit(n int) LoopCheck {
	if n <= 0 {
		return nil
	}

	return func(_ context.Context, iteration int) error {
		if iteration >= n {
			return ErrLoopAborted.With(slog.Int("limit", n)).
				Wrapf("exceeded %d iterations", n)
		}

		return nil
	}
}

// LoopContext stops a loop once ctx is done.
func LoopContext() LoopCheck {
	return func(ctx context.Context, _ int) error {
		if err := ctx.Err(); err != nil {
			return ErrLoopAborted.Wrap(err)
		}

		return nil
	}
}

// LoopChecks combines checks, running them in order until one fails.
// Nil checks are ignored.
func LoopChecks(checks ...LoopCheck) LoopCheck {
	active := make([]LoopCheck, 0, len(checks))

	for _, c := range checks {
		if c != nil {
			active = append(active, c)
		}
	}

	if len(active) == 0 {
		return nil
	}

	return func(ctx context.Context, iteration int) error {
		for _, c := range active {
			if err := c(ctx, iteration); err != nil {
				return err
			}
		}

		return nil
	}
}
