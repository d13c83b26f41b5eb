// Package eventbus is a small in-memory fanout used to decouple the runner
// from observers such as the run-history recorder.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event is one signal on the bus.
//
// Contract:
//   - Publish never blocks.
//   - Subscriber channels are buffered; a slow subscriber loses events
//     rather than stalling the publisher.
//
// Data should be small and JSON-serializable; the recorder persists it.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns the in-memory bus. It owns no goroutines; delivery happens
// on the publisher's stack.
func New() Bus {
	return &fanoutBus{subs: map[uint64]chan Event{}}
}

type fanoutBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *fanoutBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Snapshot under the read lock so sends happen lock-free.
	b.mu.RLock()
	chs := make([]chan Event, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		trySend(ch, e)
	}
}

// trySend delivers without blocking and absorbs the send-on-closed panic
// that a concurrent unsubscribe can cause.
func trySend(ch chan Event, e Event) {
	defer func() { _ = recover() }()
	select {
	case ch <- e:
	default:
	}
}

func (b *fanoutBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			// Safe because trySend recovers from send panics.
			close(ch)
		})
	}
	return ch, unsub
}
