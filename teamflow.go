// Package teamflow provides a high-level façade over the core run context,
// the flow event log and the runner, enabling quick construction of
// multi-agent turn loops. Most applications interact with this package by:
//  1. Building agents and teams (agent.New, agent.NewTeam, or config.Parse)
//  2. Creating tasks (core.NewTask)
//  3. Calling Run (asynchronous) or RunSync (blocking)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable event log (flow.OpenSQLiteLog) and
// a structured logger.
package teamflow

import (
	"context"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/flow"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/runner"
)

// Options configures a run started through this façade.
type Options struct {
	// Log is the event log backing the run's flow. Defaults to in-memory.
	Log core.EventLog
	// ThreadID resumes an existing thread when set.
	ThreadID string
	// Logger defaults to a no-op logger.
	Logger logging.Logger
	// MaxTurns bounds the turn loop. Defaults to the runner's default.
	MaxTurns     int
	Tools        []core.Tool
	Handlers     []core.Handler
	Instructions []string
}

// RunSync executes a blocking turn loop for root over the given tasks.
func RunSync(ctx context.Context, root core.Agent, tasks []*core.Task, optFns ...func(o *Options)) error {
	return newRunner(root, optFns).RunSync(ctx, tasks...)
}

// Run executes the turn loop asynchronously; the returned channel yields the
// run's outcome. Semantics are identical to RunSync.
func Run(ctx context.Context, root core.Agent, tasks []*core.Task, optFns ...func(o *Options)) <-chan error {
	return newRunner(root, optFns).Run(ctx, tasks...)
}

func newRunner(root core.Agent, optFns []func(o *Options)) *runner.Runner {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	fl := flow.New(func(o *flow.Options) {
		o.Log = opts.Log
		o.ThreadID = opts.ThreadID
	})
	return runner.New(root, func(o *runner.Options) {
		o.Flow = fl
		o.Logger = opts.Logger
		if opts.MaxTurns > 0 {
			o.MaxTurns = opts.MaxTurns
		}
		o.Tools = opts.Tools
		o.Handlers = opts.Handlers
		o.Instructions = opts.Instructions
	})
}
