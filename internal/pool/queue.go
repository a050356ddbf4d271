package pool

import "sync"

// taskQueue is the FIFO admission queue. It grows without bound, so a valid
// submission is never turned away for capacity; the configured queue size
// only seeds the initial backing array.
type taskQueue struct {
	mu    sync.Mutex
	items []*Task
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{items: make([]*Task, 0, capacity)}
}

// push appends the task. It always succeeds.
func (q *taskQueue) push(t *Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

// pop removes and returns the oldest waiting task, reporting false when the
// queue is empty.
func (q *taskQueue) pop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

// remove takes the task back out of the queue if it is still waiting.
// Reports whether the task was found.
func (q *taskQueue) remove(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, waiting := range q.items {
		if waiting == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// drain removes and returns every waiting task, oldest first.
func (q *taskQueue) drain() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
