package availability

import (
	"time"

	"ms-pricing/internal/models"
	"ms-pricing/internal/pricing"
)

// Stock at or below this triggers the low-stock warning on listing surfaces.
const LowStockThreshold = 10

// Observational ticket states, derived on every evaluation and never stored.
const (
	StateNotYetOnSale = "NOT_YET_ON_SALE"
	StateOnSale       = "ON_SALE"
	StateLowStock     = "LOW_STOCK"
	StateSoldOut      = "SOLD_OUT"
	StateSaleEnded    = "SALE_ENDED"
)

// IsOnSale reports whether the ticket's own sale window covers the given
// instant. An absent bound imposes no restriction on that side.
func IsOnSale(ticket models.Ticket, now time.Time) bool {
	if ticket.SaleStartDate != nil && now.Before(*ticket.SaleStartDate) {
		return false
	}
	if ticket.SaleEndDate != nil && now.After(*ticket.SaleEndDate) {
		return false
	}
	return true
}

// PurchasableQuantity is the most units a buyer may still add to a cart. When
// a valid flash sale carries its own inventory counter the smaller of the two
// counts wins. Never negative, even when upstream counters disagree.
func PurchasableQuantity(ticket models.Ticket, now time.Time) int {
	if !IsOnSale(ticket, now) {
		return 0
	}
	remaining := ticket.RemainingTickets
	if pricing.IsFlashSaleValid(ticket.FlashSale, now) && ticket.FlashSale.RemainingTickets != nil {
		if fsRemaining := *ticket.FlashSale.RemainingTickets; fsRemaining < remaining {
			remaining = fsRemaining
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ShouldWarnLowStock reports whether the "only N left" warning applies.
// Exactly zero stock is sold out, a distinct state, not a low-stock warning.
func ShouldWarnLowStock(ticket models.Ticket, now time.Time) bool {
	n := PurchasableQuantity(ticket, now)
	return n > 0 && n <= LowStockThreshold
}

// TicketState classifies the ticket for display:
// NOT_YET_ON_SALE -> ON_SALE -> (LOW_STOCK) -> SOLD_OUT | SALE_ENDED.
// Transitions happen purely by re-evaluating against the advancing clock and
// server-refreshed remaining counts.
func TicketState(ticket models.Ticket, now time.Time) string {
	if ticket.SaleStartDate != nil && now.Before(*ticket.SaleStartDate) {
		return StateNotYetOnSale
	}
	if ticket.SaleEndDate != nil && now.After(*ticket.SaleEndDate) {
		return StateSaleEnded
	}
	n := PurchasableQuantity(ticket, now)
	switch {
	case n == 0:
		return StateSoldOut
	case n <= LowStockThreshold:
		return StateLowStock
	default:
		return StateOnSale
	}
}
