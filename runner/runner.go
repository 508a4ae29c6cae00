// Package runner drives the turn loop: it scopes a run context to a flow,
// then repeatedly runs the root actor, one agent turn per iteration, until
// every task reaches a terminal status, the turn budget is exhausted or the
// context is cancelled.
package runner

import (
	"context"
	"fmt"

	"github.com/hupe1980/teamflow/compiler"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/flow"
	"github.com/hupe1980/teamflow/logging"
)

// Options configures a Runner.
type Options struct {
	// Flow the run reads from and appends to. Defaults to a fresh flow with
	// an in-memory log.
	Flow core.Flow
	// Compiler used for message compilation. Defaults to the package
	// compiler's implementation.
	Compiler core.MessageCompiler
	Logger   logging.Logger
	// MaxTurns bounds the loop. Defaults to 100.
	MaxTurns     int
	Tools        []core.Tool
	Handlers     []core.Handler
	Instructions []string
}

// Runner owns one root actor (an agent or a team) and executes runs against it.
type Runner struct {
	root core.Agent
	opts Options
}

// New creates a Runner for the given root actor.
func New(root core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxTurns: 100,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Flow == nil {
		opts.Flow = flow.New()
	}
	if opts.Compiler == nil {
		opts.Compiler = compiler.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{root: root, opts: opts}
}

// RunSync executes the turn loop, blocking until the tasks are done, the
// turn budget runs out or ctx is cancelled. The run context is installed as
// the ambient context for the duration of the run and released on every exit
// path.
func (r *Runner) RunSync(ctx context.Context, tasks ...*core.Task) error {
	rc := core.NewRunContext(ctx, r.opts.Flow, func(o *core.RunContextOptions) {
		o.Tasks = tasks
		o.Tools = r.opts.Tools
		o.Handlers = r.opts.Handlers
		o.Instructions = r.opts.Instructions
		o.Compiler = r.opts.Compiler
		o.Logger = r.opts.Logger
	})

	release := rc.Enter()
	defer release()

	for turn := 0; turn < r.opts.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if allDone(tasks) {
			r.opts.Logger.Info("run complete", "turns", turn)
			return nil
		}
		if err := r.root.Run(rc); err != nil {
			return fmt.Errorf("turn %d of %q: %w", turn+1, r.root.Name(), err)
		}
	}
	if !allDone(tasks) {
		return fmt.Errorf("run of %q stopped after %d turns with unfinished tasks", r.root.Name(), r.opts.MaxTurns)
	}
	return nil
}

// Run executes the turn loop in a goroutine and reports its outcome on the
// returned channel. Semantics are identical to RunSync.
func (r *Runner) Run(ctx context.Context, tasks ...*core.Task) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- r.RunSync(ctx, tasks...)
	}()
	return done
}

func allDone(tasks []*core.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.IsDone() {
			return false
		}
	}
	return true
}
