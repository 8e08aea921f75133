package rxws

import (
	"context"
	"sync"
)

// EventBus is a hot multicast stream of events. Published events reach the subscribers attached at
// publish time, in publish order; nothing is buffered for subscribers that attach later. The bus
// terminates exactly once, by Complete or Fail, and ignores every publish afterwards.
type EventBus struct {
	lock        sync.Mutex
	subscribers map[uint64]*Subscription
	nextID      uint64
	terminated  bool
	terminalErr error
	metrics     *Metrics
}

// NewEventBus creates a new EventBus and returns a pointer to it.
func NewEventBus() *EventBus {
	return newEventBus(nil)
}

func newEventBus(metrics *Metrics) *EventBus {
	return &EventBus{
		subscribers: make(map[uint64]*Subscription),
		metrics:     metrics,
	}
}

// Publish hands e to every attached subscriber before returning. With no subscribers the event
// is discarded.
func (b *EventBus) Publish(e Event) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.terminated {
		return
	}

	if len(b.subscribers) == 0 {
		b.metrics.eventDropped(e)
		return
	}

	b.metrics.eventPublished(e)

	for _, sub := range b.subscribers {
		sub.push(e)
	}
}

// Subscribe attaches a new subscriber. Subscribing to a terminated bus yields a subscription that
// only reports the terminal value.
func (b *EventBus) Subscribe() *Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.nextID++
	sub := &Subscription{
		bus:    b,
		id:     b.nextID,
		notify: make(chan struct{}, 1),
	}

	if b.terminated {
		sub.finish(b.terminalErr)
		return sub
	}

	b.subscribers[sub.id] = sub
	b.metrics.subscribersChanged(len(b.subscribers))

	return sub
}

// SubscribeWith attaches a subscriber and then runs action, so that anything action publishes is
// observed by the new subscriber. If action fails the subscriber is detached and the error returned.
func (b *EventBus) SubscribeWith(action func() error) (*Subscription, error) {
	sub := b.Subscribe()

	if err := action(); err != nil {
		sub.Close()
		return nil, err
	}

	return sub, nil
}

// Complete terminates the stream normally. Subscribers drain their pending events and then
// observe ErrStreamCompleted.
func (b *EventBus) Complete() bool {
	return b.terminate(nil)
}

// Fail terminates the stream with err.
func (b *EventBus) Fail(err error) bool {
	if err == nil {
		err = ErrTransportFailure
	}
	return b.terminate(err)
}

func (b *EventBus) terminate(err error) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.terminated {
		return false
	}

	b.terminated = true
	b.terminalErr = err

	for id, sub := range b.subscribers {
		sub.finish(err)
		delete(b.subscribers, id)
	}
	b.metrics.subscribersChanged(0)

	return true
}

func (b *EventBus) HasSubscribers() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return len(b.subscribers) > 0
}

func (b *EventBus) Terminated() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.terminated
}

func (b *EventBus) remove(id uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.subscribers[id]; !ok {
		return
	}
	delete(b.subscribers, id)
	b.metrics.subscribersChanged(len(b.subscribers))
}

// Subscription receives the events published on an EventBus after it attached. Events queue up
// per subscription so that a slow reader never blocks the publisher.
type Subscription struct {
	bus *EventBus
	id  uint64

	mu     sync.Mutex
	queue  []Event
	done   bool
	err    error
	closed bool
	notify chan struct{}
}

func (s *Subscription) push(e Event) {
	s.mu.Lock()
	if s.closed || s.done {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	s.signal()
}

func (s *Subscription) finish(err error) {
	if err == nil {
		err = ErrStreamCompleted
	}

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.err = err
	s.mu.Unlock()

	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until the next event arrives. Once pending events are drained it returns the terminal
// value: ErrStreamCompleted after a normal completion, or the error the stream failed with.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrSubscriptionDone
		}
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return e, nil
		}
		if s.done {
			err := s.err
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close detaches the subscription from its bus. It never closes the underlying connection.
func (s *Subscription) Close() {
	s.bus.remove(s.id)

	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.signal()
}

// first returns the first event of the given kind, skipping everything else.
func (s *Subscription) first(ctx context.Context, kind EventKind) (Event, error) {
	for {
		e, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if e.Kind().Is(kind) {
			return e, nil
		}
	}
}
