package pool

import "context"

// Transport executes a task's outbound request and reports the outcome.
// Implementations own all protocol concerns (timeouts, redirects, headers);
// the pool only distinguishes success from failure and captures the error
// message on a failed task. A started execution is never interrupted by the
// pool, so cancelling in-flight requests is the transport's responsibility.
type Transport interface {
	// Execute performs the request and returns the response payload on
	// success, or an error describing the failure.
	Execute(ctx context.Context, endpoint, method string, body []byte) ([]byte, error)
}
