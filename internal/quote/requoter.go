package quote

import (
	"context"
	"fmt"
	"time"

	"ms-pricing/internal/logger"
	"ms-pricing/internal/models"
	"ms-pricing/internal/sse"
)

// Requoter re-evaluates quotes for watched tickets on each clock tick and
// pushes a fresh quote over SSE whenever something visible changed. This
// replaces the per-component 1-second timers the web surfaces used to run.
type Requoter struct {
	Service *QuoteService
	Emitter *sse.QuoteEventEmitter
	Logger  *logger.Logger

	lastSent map[string]string
}

func NewRequoter(service *QuoteService, emitter *sse.QuoteEventEmitter, log *logger.Logger) *Requoter {
	return &Requoter{
		Service:  service,
		Emitter:  emitter,
		Logger:   log,
		lastSent: make(map[string]string),
	}
}

// Run consumes clock ticks until ctx is done.
func (r *Requoter) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case now, ok := <-ticks:
			if !ok {
				return
			}
			r.Tick(ctx, now)
		case <-ctx.Done():
			return
		}
	}
}

// Tick requotes every ticket somebody is watching.
func (r *Requoter) Tick(ctx context.Context, now time.Time) {
	for _, ticketID := range r.Emitter.WatchedTickets() {
		q, err := r.Service.QuoteTicket(ctx, ticketID, now)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Error("REQUOTER", fmt.Sprintf("quote ticket %s: %v", ticketID, err))
			}
			continue
		}

		key := fingerprint(*q)
		if r.lastSent[ticketID] == key {
			continue
		}
		r.lastSent[ticketID] = key
		r.Emitter.EmitQuote(*q)
	}
}

// fingerprint captures the parts of a quote a client can see change.
func fingerprint(q models.TicketQuote) string {
	return fmt.Sprintf("%s|%.4f|%d|%t|%t", q.State, q.EffectivePrice, q.PurchasableQuantity, q.FlashSaleActive, q.LowStock)
}
