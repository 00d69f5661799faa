// Package storage defines the event-journal boundary that drives replay and
// command rehydration. The journal is the source of truth for state
// reconstruction: records are appended, never mutated or deleted.
//
// Two implementations exist: memory (explicit in-process state, used by tests
// and embedded callers) and sqlite (durable journal behind the same
// interface). Callers must not depend on anything beyond the EventStore
// contract; physical layout is an infrastructure concern.
package storage
