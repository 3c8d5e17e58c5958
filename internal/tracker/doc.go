// Package tracker owns participant progress and the active-task session.
//
// A single Tracker is the only holder of mutable state: the participant
// store, the globally active task, and the task-scoped scratch fields
// (speed-round post counter, key-exchange secret). Every read and mutation
// goes through one mutex, so no two requests interleave on a record.
//
// Per-task calls pass through the gate in a fixed order:
//
//  1. the participant id must be registered (ErrNotRegistered)
//  2. the endpoint's task must be the active one (ErrTaskNotActive)
//  3. task preconditions: Basic Auth, payload shape (ErrUnauthorized,
//     ErrValidation, ErrPrecondition)
//
// After every accepted mutation the registered Observers receive the Event
// and a full Snapshot. Observers run while the lock is held, which keeps
// snapshots in mutation order; they must not block.
package tracker
