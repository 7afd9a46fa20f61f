package lib

import "sync"

// RefreshTrigger is a monotonic counter the composer bumps after each successful post.
// Subscribers always end up seeing the latest value, though bursts may be coalesced.
type RefreshTrigger struct {
	mu    sync.Mutex
	value uint64
	subs  map[chan uint64]struct{}
}

func NewRefreshTrigger() *RefreshTrigger {
	return &RefreshTrigger{subs: make(map[chan uint64]struct{})}
}

func (t *RefreshTrigger) Value() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *RefreshTrigger) Bump() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.value++
	v := t.value

	for ch := range t.subs {
		select {
		case ch <- v:
		default:
			// replace the stale pending value with the newest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}

	return v
}

func (t *RefreshTrigger) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, ch)
	}
}
