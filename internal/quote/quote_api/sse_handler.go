package quote_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-pricing/internal/sse"

	"github.com/go-chi/chi/v5"
)

// StreamTicketQuotes handles GET /api/pricing/ticket/{ticketID}/stream.
// Clients connect once and receive a new event whenever the clock-driven
// requoter sees the ticket's quote change.
func (h *Handler) StreamTicketQuotes(emitter *sse.QuoteEventEmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := chi.URLParam(r, "ticketID")
		if ticketID == "" {
			http.Error(w, "ticketID path parameter is required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		quotes := emitter.SubscribeToTicket(r.Context(), ticketID)
		h.Logger.Info("SSE", fmt.Sprintf("client connected for ticket %s (%d watching)", ticketID, emitter.ClientCount(ticketID)))

		// Send the current quote immediately so the client does not wait for
		// the next change.
		if q, err := h.Service.QuoteTicket(r.Context(), ticketID, time.Now()); err == nil {
			if data, err := json.Marshal(q); err == nil {
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			}
		}

		for q := range quotes {
			data, err := json.Marshal(q)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}

		h.Logger.Info("SSE", fmt.Sprintf("client disconnected from ticket %s", ticketID))
	}
}
