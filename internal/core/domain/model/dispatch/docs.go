// Package dispatch holds the values produced while deciding how a request is
// resolved: the ScoreSet computed from a request snapshot and the immutable
// Decision that picks instant dispatch or provider assignment.
package dispatch
