package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in the background, detached from the cancellation
// of ctx but keeping its logger. A panic is recovered and reported as an
// error. The returned channel receives the handler result once and is
// closed; callers that do not care may ignore it.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) <-chan error {
	newCtx := newBackgroundContext(ctx, name)
	done := make(chan error, 1)

	go func() {
		defer close(done)

		err := run(newCtx, handler)
		if err != nil {
			ctxlog.From(newCtx).Error("Error in background task", "error", err)
		} else {
			ctxlog.From(newCtx).Debug("Background task finished")
		}
		done <- err
	}()

	return done
}

func run(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic in background task",
				goerr.V("recover", r),
				goerr.V("stack", string(debug.Stack())),
			)
		}
	}()

	return handler(ctx)
}

// newBackgroundContext creates a new background context preserving the logger
func newBackgroundContext(ctx context.Context, name string) context.Context {
	logger := ctxlog.From(ctx).With("task", name)
	return ctxlog.With(context.Background(), logger)
}
