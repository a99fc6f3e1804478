package clock_test

import (
	"context"
	"testing"
	"time"

	"ms-pricing/internal/clock"

	"github.com/stretchr/testify/assert"
)

func TestTickerDeliversTicks(t *testing.T) {
	ticker := clock.NewTicker(10 * time.Millisecond)
	ticker.Start()
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := ticker.Subscribe(ctx)

	select {
	case now := <-ch:
		assert.False(t, now.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no tick received within a second")
	}
}

func TestTickerRemovesSubscriberOnCancel(t *testing.T) {
	ticker := clock.NewTicker(10 * time.Millisecond)
	ticker.Start()
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	ticker.Subscribe(ctx)
	assert.Equal(t, 1, ticker.SubscriberCount())

	cancel()

	// Removal is asynchronous; give it a moment
	deadline := time.Now().Add(time.Second)
	for ticker.SubscriberCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, ticker.SubscriberCount())
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	ticker := clock.NewTicker(10 * time.Millisecond)
	ticker.Start()
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First subscriber never reads; second must still get ticks
	ticker.Subscribe(ctx)
	ch := ticker.Subscribe(ctx)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("tick lost behind a slow subscriber")
	}
}
