package sse

import (
	"context"
	"sync"

	"ms-pricing/internal/models"
)

// QuoteEventEmitter manages SSE connections and broadcasts fresh ticket
// quotes to the surfaces watching a ticket (listing rows, banners, the
// checkout drawer).
type QuoteEventEmitter struct {
	// key: ticketID, value: connected client channels
	clients     map[string][]chan models.TicketQuote
	clientMutex sync.RWMutex
}

func NewQuoteEventEmitter() *QuoteEventEmitter {
	return &QuoteEventEmitter{
		clients: make(map[string][]chan models.TicketQuote),
	}
}

// SubscribeToTicket adds a client to a ticket's quote stream. The client is
// removed when its context is done.
func (e *QuoteEventEmitter) SubscribeToTicket(ctx context.Context, ticketID string) chan models.TicketQuote {
	clientChan := make(chan models.TicketQuote, 10)

	e.clientMutex.Lock()
	e.clients[ticketID] = append(e.clients[ticketID], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(ticketID, clientChan)
	}()

	return clientChan
}

// EmitQuote broadcasts a quote to every client watching its ticket.
func (e *QuoteEventEmitter) EmitQuote(quote models.TicketQuote) {
	e.clientMutex.RLock()
	clients := e.clients[quote.TicketID]
	e.clientMutex.RUnlock()

	for _, clientChan := range clients {
		// Non-blocking send so a slow client cannot stall the emitter
		select {
		case clientChan <- quote:
		default:
		}
	}
}

// WatchedTickets lists the tickets that currently have at least one client.
// The clock-driven requoter only recomputes quotes somebody is looking at.
func (e *QuoteEventEmitter) WatchedTickets() []string {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	ids := make([]string, 0, len(e.clients))
	for id := range e.clients {
		ids = append(ids, id)
	}
	return ids
}

// ClientCount returns the number of clients watching a ticket.
func (e *QuoteEventEmitter) ClientCount(ticketID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[ticketID])
}

func (e *QuoteEventEmitter) removeClient(ticketID string, clientChan chan models.TicketQuote) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[ticketID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[ticketID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[ticketID]) == 0 {
		delete(e.clients, ticketID)
	}
}
