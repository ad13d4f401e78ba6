package taskmgr

import "errors"

// ErrAllocationFailed is returned when the shared channel cannot be created.
var ErrAllocationFailed = errors.New("taskmgr: shared channel allocation failed")

// ErrAttachFailed is returned when the shared channel cannot be attached, for
// example because it was destroyed and not recreated.
var ErrAttachFailed = errors.New("taskmgr: shared channel attach failed")

// ErrUnrecognizedKind is returned when a record carries an unknown task kind.
var ErrUnrecognizedKind = errors.New("taskmgr: unrecognized task kind")

// ErrDivisionByZero is recorded in an Outcome when a division has a zero divisor.
var ErrDivisionByZero = errors.New("taskmgr: division by zero")

// ErrModulusByZero is recorded in an Outcome when a modulus has a zero divisor.
var ErrModulusByZero = errors.New("taskmgr: modulus by zero")

// ErrSpawnFailed is returned when a worker process cannot be started.
var ErrSpawnFailed = errors.New("taskmgr: worker spawn failed")

// ErrQueueRunning is returned when Run is called on a queue that is already running.
var ErrQueueRunning = errors.New("taskmgr: queue already running")

// ErrUnknownBackend is returned for a channel spec with an unsupported backend.
var ErrUnknownBackend = errors.New("taskmgr: unknown channel backend")
