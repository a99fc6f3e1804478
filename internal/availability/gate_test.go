package availability_test

import (
	"testing"
	"time"

	"ms-pricing/internal/availability"
	"ms-pricing/internal/models"

	"github.com/stretchr/testify/assert"
)

func saleWindow(start, end time.Time) (*time.Time, *time.Time) {
	return &start, &end
}

func validFlashSale(now time.Time, remaining *int) *models.FlashSale {
	return &models.FlashSale{
		ID:               "fs1",
		TicketID:         "t1",
		DiscountType:     models.DiscountPercentage,
		DiscountAmount:   20,
		DiscountedPrice:  "800",
		StartDate:        now.Add(-time.Hour),
		EndDate:          now.Add(time.Hour),
		Status:           models.FlashSaleActive,
		RemainingTickets: remaining,
	}
}

func TestIsOnSale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// No bounds at all: always on sale
	assert.True(t, availability.IsOnSale(models.Ticket{ID: "t1"}, now))

	start, end := saleWindow(now.Add(-time.Hour), now.Add(time.Hour))
	ticket := models.Ticket{ID: "t1", SaleStartDate: start, SaleEndDate: end}
	assert.True(t, availability.IsOnSale(ticket, now))
	assert.False(t, availability.IsOnSale(ticket, now.Add(-2*time.Hour)))
	assert.False(t, availability.IsOnSale(ticket, now.Add(2*time.Hour)))

	// Open-ended on one side
	onlyStart := models.Ticket{ID: "t1", SaleStartDate: start}
	assert.True(t, availability.IsOnSale(onlyStart, now.Add(48*time.Hour)))
}

// Ticket-level cap wins when the flash sale advertises more stock than the
// ticket actually has left.
func TestPurchasableQuantityTicketCapWins(t *testing.T) {
	now := time.Now()
	fsRemaining := 8
	ticket := models.Ticket{
		ID:               "t1",
		Price:            "1000",
		RemainingTickets: 5,
		FlashSale:        validFlashSale(now, &fsRemaining),
	}
	assert.Equal(t, 5, availability.PurchasableQuantity(ticket, now))
}

func TestPurchasableQuantityFlashSaleCapWins(t *testing.T) {
	now := time.Now()
	fsRemaining := 3
	ticket := models.Ticket{
		ID:               "t1",
		Price:            "1000",
		RemainingTickets: 50,
		FlashSale:        validFlashSale(now, &fsRemaining),
	}
	assert.Equal(t, 3, availability.PurchasableQuantity(ticket, now))

	// Once the sale lapses its cap no longer applies
	after := ticket.FlashSale.EndDate.Add(time.Second)
	assert.Equal(t, 50, availability.PurchasableQuantity(ticket, after))
}

func TestPurchasableQuantityClampsNegative(t *testing.T) {
	now := time.Now()
	fsRemaining := -2
	ticket := models.Ticket{
		ID:               "t1",
		RemainingTickets: -1,
		FlashSale:        validFlashSale(now, &fsRemaining),
	}
	assert.Equal(t, 0, availability.PurchasableQuantity(ticket, now))
}

func TestPurchasableQuantityZeroWhenOffSale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start, end := saleWindow(now.Add(time.Hour), now.Add(2*time.Hour))
	ticket := models.Ticket{ID: "t1", RemainingTickets: 40, SaleStartDate: start, SaleEndDate: end}
	assert.Equal(t, 0, availability.PurchasableQuantity(ticket, now))
}

func TestShouldWarnLowStock(t *testing.T) {
	now := time.Now()

	assert.True(t, availability.ShouldWarnLowStock(models.Ticket{ID: "t1", RemainingTickets: 10}, now))
	assert.True(t, availability.ShouldWarnLowStock(models.Ticket{ID: "t1", RemainingTickets: 1}, now))
	assert.False(t, availability.ShouldWarnLowStock(models.Ticket{ID: "t1", RemainingTickets: 11}, now))

	// Sold out is its own state, not a low-stock warning
	assert.False(t, availability.ShouldWarnLowStock(models.Ticket{ID: "t1", RemainingTickets: 0}, now))
}

func TestTicketStateTransitions(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start, end := saleWindow(base.Add(24*time.Hour), base.Add(72*time.Hour))
	ticket := models.Ticket{
		ID:               "t1",
		RemainingTickets: 100,
		SaleStartDate:    start,
		SaleEndDate:      end,
	}

	// Same ticket walked through the clock
	assert.Equal(t, availability.StateNotYetOnSale, availability.TicketState(ticket, base))
	assert.Equal(t, availability.StateOnSale, availability.TicketState(ticket, base.Add(25*time.Hour)))

	ticket.RemainingTickets = 7
	assert.Equal(t, availability.StateLowStock, availability.TicketState(ticket, base.Add(25*time.Hour)))

	ticket.RemainingTickets = 0
	assert.Equal(t, availability.StateSoldOut, availability.TicketState(ticket, base.Add(25*time.Hour)))

	ticket.RemainingTickets = 100
	assert.Equal(t, availability.StateSaleEnded, availability.TicketState(ticket, base.Add(96*time.Hour)))
}
