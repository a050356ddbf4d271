package pool

// DrainHandler receives the pool's status snapshot when the pool transitions
// to idle (queue empty, no executions in flight).
type DrainHandler func(Stats)

// OnDrained registers a handler invoked once per idle transition with the
// status snapshot taken at that moment. Handlers run on the dispatch loop's
// goroutine; callers needing a specific goroutine must marshal themselves.
func (p *Pool) OnDrained(h DrainHandler) {
	if h == nil {
		return
	}
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.drainHandlers = append(p.drainHandlers, h)
	p.logger.Debug("registered drain handler", "handler_count", len(p.drainHandlers))
}

// notifyDrained invokes every registered handler with the snapshot. The
// handler slice is copied under the lock so handlers cannot deadlock against
// OnDrained.
func (p *Pool) notifyDrained(snapshot Stats) {
	p.notifyMu.RLock()
	handlers := make([]DrainHandler, len(p.drainHandlers))
	copy(handlers, p.drainHandlers)
	p.notifyMu.RUnlock()

	p.logger.Info("all tasks completed",
		"total", snapshot.Total,
		"completed", snapshot.Completed,
		"failed", snapshot.Failed,
		"cancelled", snapshot.Cancelled,
		"handler_count", len(handlers))

	for _, h := range handlers {
		h(snapshot)
	}
}
