package watch

import (
	"context"
	"time"

	"github.com/klauern/snippetsync/internal/logging"
)

// DefaultDebounce is how long a batch of events must stay quiet before the
// handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per quiet batch of events.
type Handler func(ctx context.Context, batch []FileEvent) error

// Debounce collects events until none arrive for wait, then calls fn with the
// batch. Handler errors and watcher errors are logged and the loop continues.
// It returns when ctx is done or events is closed.
func Debounce(ctx context.Context, events <-chan FileEvent, errs <-chan error, wait time.Duration, fn Handler) error {
	if wait <= 0 {
		wait = DefaultDebounce
	}

	// Armed only while a batch is pending.
	timer := time.NewTimer(wait)
	timer.Stop()
	defer timer.Stop()

	var batch []FileEvent
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			logging.Debug("snippet file changed",
				logging.Path(ev.Path),
				logging.Store(ev.Store.String()),
				logging.Operation(ev.Op.String()),
			)
			batch = append(batch, ev)
			timer.Reset(wait)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logging.Warn("file watcher error", logging.Err(err))

		case <-timer.C:
			if len(batch) == 0 {
				continue
			}
			pending := batch
			batch = nil
			if err := fn(ctx, pending); err != nil {
				logging.Error("sync after change failed",
					logging.Count(len(pending)),
					logging.Err(err),
				)
			}
		}
	}
}
