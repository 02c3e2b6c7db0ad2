package middleware

import (
	"context"
	"fmt"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/outbox"
)

// OutboxFlush drains staged event records after every successful command, so
// a booking's events become claimable the moment its result is returned.
// Failed commands skip the flush: their aggregates never staged anything,
// and a flush error must not mask the command's own error.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("outbox flush after %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
