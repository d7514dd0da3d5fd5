package portal

import (
	"context"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
)

// sagaStep pairs a forward action with its undo. Compensate may be nil for
// the final step, which has nothing after it to fail.
type sagaStep struct {
	name       string
	forward    func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes the steps in order. When step k fails, the compensations
// of steps k-1..0 run in reverse before the step's error is returned. This is
// the portal's substitute for cross-file transactions: each store commits
// independently, so partial failure must be undone explicitly.
//
// A failed compensation is logged and surfaced as an inconsistency, since at
// that point the stores have genuinely diverged.
func runSaga(ctx context.Context, steps []sagaStep) error {
	for i, step := range steps {
		if err := step.forward(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].compensate == nil {
					continue
				}
				if cerr := steps[j].compensate(ctx); cerr != nil {
					logger.Error("saga: compensation %q failed: %v", steps[j].name, cerr)
					return inconsistentf("%s (rollback of %s also failed)",
						MessageOf(err), steps[j].name)
				}
				logger.Debug("saga: compensated %q after %q failed", steps[j].name, step.name)
			}
			return err
		}
	}
	return nil
}
