// Package pool implements a bounded-concurrency execution pool for outbound
// requests. Submitted tasks are registered, queued in FIFO order, and executed
// by at most a fixed number of concurrent workers. The pool tracks per-task
// lifecycle state, invokes per-task callbacks on completion, and reports
// aggregate status; it keeps running after individual task failures until
// explicitly stopped.
package pool
