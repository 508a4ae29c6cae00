// Package core provides the foundational domain types, interfaces and the
// run-scoped execution context used by TeamFlow. It defines:
//
//   - Agents (units of autonomous / orchestrated work, including teams)
//   - Events (immutable, time-ordered records of everything that happened)
//   - EventLog / Flow (pluggable append-only storage of events per thread)
//   - RunContext (the scoped aggregation of tasks, tools, instructions,
//     participants and handlers for one run, plus prompt & message compilation)
//   - ModelRules / MessageCompiler (the boundary to model-ready messages)
//
// The package intentionally keeps implementation concerns (persistence,
// concrete model clients, the turn loop) out of scope, exposing small
// interfaces so custom backends can be plugged in.
package core
