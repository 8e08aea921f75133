package rxws

import "sync"

// serialExecutor runs tasks one at a time, in submission order, without owning a goroutine: the
// submitter that finds the executor idle drains the queue. A task submitted from inside a running
// task is queued behind it, so transports may fire callbacks inline.
type serialExecutor struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (e *serialExecutor) submit(task func()) {
	e.mu.Lock()
	e.queue = append(e.queue, task)
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.drain()
}

func (e *serialExecutor) drain() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.running = false
			e.mu.Unlock()
			return
		}
		task := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		task()
	}
}

// call runs fn on the executor and waits for its result.
func (e *serialExecutor) call(fn func() error) error {
	done := make(chan error, 1)
	e.submit(func() {
		done <- fn()
	})
	return <-done
}
