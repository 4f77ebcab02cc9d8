package session

import "sync"

// broadcaster fans values out to subscribers. Slow subscribers lose stale
// values but always receive the latest one.
type broadcaster[T any] struct {
	mu          sync.Mutex
	subscribers map[chan T]struct{}
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subscribers: make(map[chan T]struct{})}
}

// subscribe registers a channel primed with initial. The caller must invoke
// cancel to avoid leaks; cancel closes the channel.
func (b *broadcaster[T]) subscribe(initial T) (<-chan T, func()) {
	ch := make(chan T, 8)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (b *broadcaster[T]) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}
