package clock

import (
	"context"
	"sync"
	"time"
)

// Ticker is the single shared tick source for every surface that needs to
// re-check flash-sale validity against the wall clock. The pricing functions
// take `now` as an explicit argument, so this is the only place in the service
// that touches real time on a schedule.
type Ticker struct {
	interval time.Duration

	mu          sync.RWMutex
	subscribers []chan time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Subscribe registers a listener. The channel is buffered and sends are
// non-blocking: a subscriber that falls behind misses ticks rather than
// stalling the broadcaster. The subscription is removed when ctx is done.
func (t *Ticker) Subscribe(ctx context.Context) <-chan time.Time {
	ch := make(chan time.Time, 1)

	t.mu.Lock()
	t.subscribers = append(t.subscribers, ch)
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.remove(ch)
	}()

	return ch
}

// Start runs the broadcast loop until Stop is called.
func (t *Ticker) Start() {
	ticker := time.NewTicker(t.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				t.broadcast(now)
			case <-t.stop:
				return
			}
		}
	}()
}

func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Ticker) broadcast(now time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.subscribers {
		select {
		case ch <- now:
		default:
		}
	}
}

func (t *Ticker) remove(ch chan time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, sub := range t.subscribers {
		if sub == ch {
			t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (t *Ticker) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers)
}
