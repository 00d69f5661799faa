// Package event defines the canonical event envelope and event-type registry
// used by the scorebook write path.
//
// Events are immutable scoring facts. Each event belongs to exactly one
// stream (one per Game, TeamLineup, or InningState aggregate) and carries a
// 1-based version that is contiguous within its stream. The registry enforces
// type ownership and payload validity before the store assigns versions and
// timestamps.
//
// Reversal is logical: an action.undone record references the original event
// and excludes it from replay; nothing is ever deleted from a stream.
package event
