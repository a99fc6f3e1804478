package quote_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-pricing/internal/logger"
	"ms-pricing/internal/models"
	"ms-pricing/internal/pricing"
	"ms-pricing/internal/quote"
	"ms-pricing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *quote.QuoteService
	Logger  *logger.Logger
}

func NewHandler(service *quote.QuoteService, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// GetTicketQuote returns the current quote for a single ticket.
// GET /api/pricing/ticket/{ticketID}/quote
func (h *Handler) GetTicketQuote(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing ticket ID", "ticketID path parameter is required")
		return
	}

	q, err := h.Service.QuoteTicket(r.Context(), ticketID, time.Now())
	if err != nil {
		h.writeQuoteError(w, err)
		return
	}

	h.Logger.LogQuote(q.TicketID, q.State, q.EffectivePrice)
	utils.WriteJSON(w, http.StatusOK, "Quote retrieved successfully", q)
}

// QuoteCart prices a full cart in one call.
// POST /api/pricing/cart/quote
func (h *Handler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var lines []models.CartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	cart, err := h.Service.QuoteCart(r.Context(), lines, time.Now())
	if err != nil {
		h.writeQuoteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, "Cart quoted successfully", cart)
}

// ConfirmCheckout verifies the client's total against a fresh server-side
// computation and records the confirmation on agreement.
// POST /api/pricing/checkout/confirm
func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := h.Service.ConfirmCheckout(r.Context(), req, time.Now())
	if err != nil {
		var priceChanged *quote.PriceChangedError
		if errors.As(err, &priceChanged) {
			h.Logger.Warn("CHECKOUT", fmt.Sprintf("price changed: client %.2f server %.2f", priceChanged.ClientTotal, priceChanged.ServerTotal))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(utils.APIResponse{
				Success: false,
				Message: "Price changed",
				Error:   "PRICE_CHANGED",
				Data: map[string]interface{}{
					"client_total": priceChanged.ClientTotal,
					"server_total": priceChanged.ServerTotal,
				},
				Timestamp: time.Now(),
			})
			return
		}
		h.writeQuoteError(w, err)
		return
	}

	h.Logger.Info("CHECKOUT", fmt.Sprintf("confirmation %s total %s", resp.ConfirmationID, pricing.FormatAmount(resp.Total)))
	utils.WriteJSON(w, http.StatusOK, "Checkout confirmed", resp)
}

// writeQuoteError maps service errors onto HTTP statuses shared by every
// pricing endpoint.
func (h *Handler) writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quote.ErrTicketNotFound):
		utils.WriteError(w, http.StatusNotFound, "Ticket not found", err.Error())
	case errors.Is(err, pricing.ErrInvalidPriceData):
		// Bad master data is the caller's problem to surface, not a 500
		h.Logger.Error("PRICING", err.Error())
		utils.WriteError(w, http.StatusUnprocessableEntity, "Invalid price data", err.Error())
	case errors.Is(err, quote.ErrInvalidRequest):
		utils.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		h.Logger.Error("API", err.Error())
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
