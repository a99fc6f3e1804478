package sse_test

import (
	"context"
	"testing"
	"time"

	"ms-pricing/internal/models"
	"ms-pricing/internal/sse"

	"github.com/stretchr/testify/assert"
)

func TestEmitQuoteReachesSubscribers(t *testing.T) {
	emitter := sse.NewQuoteEventEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := emitter.SubscribeToTicket(ctx, "t1")
	assert.Equal(t, 1, emitter.ClientCount("t1"))

	quote := models.TicketQuote{TicketID: "t1", EffectivePrice: 800, State: "ON_SALE"}
	emitter.EmitQuote(quote)

	select {
	case got := <-ch:
		assert.Equal(t, 800.0, got.EffectivePrice)
	case <-time.After(time.Second):
		t.Fatal("quote not delivered")
	}

	// Quotes for other tickets do not leak across channels
	emitter.EmitQuote(models.TicketQuote{TicketID: "t2"})
	select {
	case got := <-ch:
		t.Fatalf("unexpected quote for ticket %s", got.TicketID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriberRemovedOnCancel(t *testing.T) {
	emitter := sse.NewQuoteEventEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	emitter.SubscribeToTicket(ctx, "t1")
	cancel()

	deadline := time.Now().Add(time.Second)
	for emitter.ClientCount("t1") != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, emitter.ClientCount("t1"))
	assert.Empty(t, emitter.WatchedTickets())
}
