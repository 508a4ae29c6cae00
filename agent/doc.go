// Package agent provides the concrete actors that run against a
// core.RunContext: the model-backed Agent and the Team, a composite agent
// that owns an ordered member list and decides which member acts next with a
// continuation-aware round robin over the event log. Teams nest freely
// because Team satisfies the same core.Agent interface as its members.
package agent
