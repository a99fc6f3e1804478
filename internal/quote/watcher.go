package quote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-pricing/internal/logger"
	"ms-pricing/internal/models"
)

// ExpiryWatcher sweeps active flash sales on each clock tick and publishes an
// expiry event the first time a sale is seen past its end date. A sale
// crossing its end date produces no upstream notification, so this is the
// only place the transition becomes observable to other services.
type ExpiryWatcher struct {
	DB     DBLayer
	Events EventPublisher
	Logger *logger.Logger

	mu   sync.Mutex
	seen map[string]bool
}

func NewExpiryWatcher(db DBLayer, events EventPublisher, log *logger.Logger) *ExpiryWatcher {
	return &ExpiryWatcher{
		DB:     db,
		Events: events,
		Logger: log,
		seen:   make(map[string]bool),
	}
}

// Run consumes clock ticks until ctx is done.
func (w *ExpiryWatcher) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case now, ok := <-ticks:
			if !ok {
				return
			}
			w.Sweep(ctx, now)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep checks every administratively active sale against the clock.
func (w *ExpiryWatcher) Sweep(ctx context.Context, now time.Time) {
	tickets, err := w.DB.ListTicketsOnFlashSale(ctx)
	if err != nil {
		if w.Logger != nil {
			w.Logger.Error("WATCHER", fmt.Sprintf("list flash sales: %v", err))
		}
		return
	}

	for _, ticket := range tickets {
		fs := ticket.FlashSale
		if fs == nil || !now.After(fs.EndDate) {
			continue
		}

		w.mu.Lock()
		already := w.seen[fs.ID]
		w.seen[fs.ID] = true
		w.mu.Unlock()
		if already {
			continue
		}

		ev := models.FlashSaleExpired{
			FlashSaleID: fs.ID,
			TicketID:    ticket.ID,
			EndedAt:     fs.EndDate,
			DetectedAt:  now,
		}
		if err := w.Events.PublishFlashSaleExpired(ev); err != nil {
			if w.Logger != nil {
				w.Logger.Error("WATCHER", fmt.Sprintf("publish expiry for sale %s: %v", fs.ID, err))
			}
			// Allow a retry on the next sweep
			w.mu.Lock()
			delete(w.seen, fs.ID)
			w.mu.Unlock()
			continue
		}
		if w.Logger != nil {
			w.Logger.Info("WATCHER", fmt.Sprintf("flash sale %s on ticket %s expired at %s", fs.ID, ticket.ID, fs.EndDate.Format(time.RFC3339)))
		}
	}
}
