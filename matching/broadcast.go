package matching

import (
	"sync"
	"sync/atomic"
)

// Stream is a lossy broadcast channel. Publish never blocks: a subscriber
// whose buffer is full misses the message and its missed counter is
// incremented, so a lagging consumer sees an explicit gap instead of
// stalling the matching path. Delivery is at-most-once by design.
type Stream[T any] struct {
	mu     sync.RWMutex
	subs   map[*Subscription[T]]struct{}
	buffer int
}

func NewStream[T any](buffer int) *Stream[T] {
	return &Stream[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: buffer,
	}
}

func (s *Stream[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		stream: s,
		ch:     make(chan T, s.buffer),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub
}

func (s *Stream[T]) Publish(v T) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subs {
		select {
		case sub.ch <- v:
		default:
			sub.missed.Add(1)
		}
	}
}

func (s *Stream[T]) unsubscribe(sub *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.ch)
	}
}

// SubscriberCount reports the number of live subscriptions.
func (s *Stream[T]) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

type Subscription[T any] struct {
	stream *Stream[T]
	ch     chan T
	missed atomic.Uint64
}

// C is the receive channel. It is closed when the subscription is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Missed returns the number of messages dropped since the previous call
// and resets the counter.
func (s *Subscription[T]) Missed() uint64 {
	return s.missed.Swap(0)
}

func (s *Subscription[T]) Close() {
	s.stream.unsubscribe(s)
}
