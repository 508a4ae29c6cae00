package core

import (
	"context"
	"sync"
)

// The ambient registry is a stack rather than a single slot so nested runs
// release back to their parent instead of clobbering it. Explicit passing
// through parameters or a context.Context is preferred; the ambient lookup
// exists for call paths too deep to thread a context through.
var ambient struct {
	mu    sync.Mutex
	stack []*RunContext
}

func pushAmbient(rc *RunContext) {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	ambient.stack = append(ambient.stack, rc)
}

// popAmbient removes the topmost occurrence of rc. Tolerating out-of-order
// release keeps teardown deterministic even when scopes unwind on panic.
func popAmbient(rc *RunContext) {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	for i := len(ambient.stack) - 1; i >= 0; i-- {
		if ambient.stack[i] == rc {
			ambient.stack = append(ambient.stack[:i], ambient.stack[i+1:]...)
			return
		}
	}
}

// Current returns the innermost active run context, or nil when no scope is
// active. Absence is not an error; the caller decides whether it can proceed
// without one.
func Current() *RunContext {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	if len(ambient.stack) == 0 {
		return nil
	}
	return ambient.stack[len(ambient.stack)-1]
}

// Provide wraps fn so that a nil run context argument is filled from the
// ambient registry before the call proceeds. Injection is best effort: when
// no ambient context exists fn receives nil and decides for itself whether
// that is an error.
func Provide[T any](fn func(*RunContext) (T, error)) func(*RunContext) (T, error) {
	return func(rc *RunContext) (T, error) {
		if rc == nil {
			rc = Current()
		}
		return fn(rc)
	}
}

type runContextKey struct{}

// WithRunContext returns a context.Context carrying rc, for call paths that
// can thread a context explicitly.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFrom extracts a run context from ctx, falling back to the
// ambient registry. Returns nil when neither holds one.
func RunContextFrom(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return Current()
}
