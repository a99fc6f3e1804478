package pricing_test

import (
	"testing"
	"time"

	"ms-pricing/internal/models"
	"ms-pricing/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func activeSale(start, end time.Time) *models.FlashSale {
	return &models.FlashSale{
		ID:              "fs1",
		TicketID:        "t1",
		DiscountType:    models.DiscountPercentage,
		DiscountAmount:  20,
		DiscountedPrice: "800",
		StartDate:       start,
		EndDate:         end,
		Status:          models.FlashSaleActive,
	}
}

func TestIsFlashSaleValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	// No sale attached
	assert.False(t, pricing.IsFlashSaleValid(nil, now))

	// Valid window, active status
	assert.True(t, pricing.IsFlashSaleValid(activeSale(start, end), now))

	// Administrative kill-switch wins over the window
	inactive := activeSale(start, end)
	inactive.Status = models.FlashSaleInactive
	assert.False(t, pricing.IsFlashSaleValid(inactive, now))

	// Not yet started
	assert.False(t, pricing.IsFlashSaleValid(activeSale(now.Add(time.Minute), end), now))
}

func TestFlashSaleValidityBoundaries(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	fs := activeSale(start, end)

	// Both boundary instants are inclusive
	assert.True(t, pricing.IsFlashSaleValid(fs, start))
	assert.True(t, pricing.IsFlashSaleValid(fs, end))

	// One millisecond either side is out
	assert.False(t, pricing.IsFlashSaleValid(fs, start.Add(-time.Millisecond)))
	assert.False(t, pricing.IsFlashSaleValid(fs, end.Add(time.Millisecond)))
}

// Scenario: ticket at 1000 with a 20% flash sale priced upstream at 800.
func TestEffectiveUnitPriceDuringSale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticket := models.Ticket{
		ID:               "t1",
		Name:             "Regular",
		Price:            "1000",
		Quantity:         100,
		RemainingTickets: 50,
		FlashSale:        activeSale(now.Add(-time.Hour), now.Add(time.Hour)),
	}

	price, err := pricing.EffectiveUnitPrice(ticket, now)
	assert.NoError(t, err)
	assert.Equal(t, 800.0, price)

	// savings = 1000 * 0.20 * 3
	assert.Equal(t, 600.0, pricing.LineSavings(ticket, 3, now))
}

// Scenario: same ticket one millisecond after the sale's end date.
func TestEffectiveUnitPriceAfterSaleEnds(t *testing.T) {
	end := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	ticket := models.Ticket{
		ID:        "t1",
		Price:     "1000",
		FlashSale: activeSale(end.Add(-time.Hour), end),
	}
	now := end.Add(time.Millisecond)

	price, err := pricing.EffectiveUnitPrice(ticket, now)
	assert.NoError(t, err)
	assert.Equal(t, 1000.0, price)
	assert.Equal(t, 0.0, pricing.LineSavings(ticket, 3, now))
}

func TestEffectiveUnitPriceIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticket := models.Ticket{
		ID:        "t1",
		Price:     "1250.50",
		FlashSale: activeSale(now.Add(-time.Hour), now.Add(time.Hour)),
	}

	first, err1 := pricing.EffectiveUnitPrice(ticket, now)
	second, err2 := pricing.EffectiveUnitPrice(ticket, now)
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, first, second)
}

// A valid non-negative discount never raises the price above base.
func TestEffectivePriceNeverExceedsBase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, discounted := range []models.Amount{"0", "1", "500", "999.99", "1000"} {
		fs := activeSale(now.Add(-time.Hour), now.Add(time.Hour))
		fs.DiscountedPrice = discounted
		ticket := models.Ticket{ID: "t1", Price: "1000", FlashSale: fs}

		price, err := pricing.EffectiveUnitPrice(ticket, now)
		assert.NoError(t, err)
		assert.LessOrEqual(t, price, 1000.0)
	}
}

// Scenario: malformed base price must error, never show "free".
func TestEffectiveUnitPriceMalformed(t *testing.T) {
	now := time.Now()

	_, err := pricing.EffectiveUnitPrice(models.Ticket{ID: "t1", Price: "abc"}, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidPriceData)

	// Same rule for the flash-sale price while the sale is valid
	fs := activeSale(now.Add(-time.Hour), now.Add(time.Hour))
	fs.DiscountedPrice = "not-a-number"
	_, err = pricing.EffectiveUnitPrice(models.Ticket{ID: "t1", Price: "1000", FlashSale: fs}, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidPriceData)

	// Negative master data is just as invalid
	_, err = pricing.EffectiveUnitPrice(models.Ticket{ID: "t1", Price: "-5"}, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidPriceData)
}

func TestLineSavingsFixedDiscount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs := activeSale(now.Add(-time.Hour), now.Add(time.Hour))
	fs.DiscountType = models.DiscountFixed
	fs.DiscountAmount = 150
	ticket := models.Ticket{ID: "t1", Price: "1000", FlashSale: fs}

	assert.Equal(t, 300.0, pricing.LineSavings(ticket, 2, now))

	// Savings degrade to zero instead of erroring
	assert.Equal(t, 0.0, pricing.LineSavings(ticket, 0, now))
	assert.Equal(t, 0.0, pricing.LineSavings(ticket, -2, now))

	badPrice := ticket
	badPrice.Price = "abc"
	assert.Equal(t, 0.0, pricing.LineSavings(badPrice, 2, now))
}

func TestCartTotalExcludesMalformedLines(t *testing.T) {
	now := time.Now()
	ticket := models.Ticket{ID: "t1", Price: "200"}

	total, err := pricing.CartTotal([]models.CartLine{
		{Ticket: ticket, Quantity: -5},
		{Ticket: ticket, Quantity: 3},
		{Ticket: ticket, Quantity: 0},
	}, now)

	// Only the quantity-3 line counts
	assert.NoError(t, err)
	assert.Equal(t, 600.0, total)
}

func TestCartTotalEmpty(t *testing.T) {
	total, err := pricing.CartTotal(nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestCartTotalPropagatesBadPrice(t *testing.T) {
	now := time.Now()
	_, err := pricing.CartTotal([]models.CartLine{
		{Ticket: models.Ticket{ID: "t1", Price: "abc"}, Quantity: 1},
	}, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidPriceData)

	// A bad price on an excluded line does not abort the cart
	total, err := pricing.CartTotal([]models.CartLine{
		{Ticket: models.Ticket{ID: "t1", Price: "abc"}, Quantity: 0},
		{Ticket: models.Ticket{ID: "t2", Price: "100"}, Quantity: 2},
	}, now)
	assert.NoError(t, err)
	assert.Equal(t, 200.0, total)
}

func TestDiscountLabel(t *testing.T) {
	assert.Equal(t, "", pricing.DiscountLabel(nil))

	assert.Equal(t, "20% OFF", pricing.DiscountLabel(&models.FlashSale{
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: 20,
	}))

	assert.Equal(t, "KES 150 OFF", pricing.DiscountLabel(&models.FlashSale{
		DiscountType:   models.DiscountFixed,
		DiscountAmount: 150,
	}))

	assert.Equal(t, "12.5% OFF", pricing.DiscountLabel(&models.FlashSale{
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: 12.5,
	}))
}

func TestFormatAmountRoundsOnlyAtDisplay(t *testing.T) {
	assert.Equal(t, "KES 0.00", pricing.FormatAmount(0))
	assert.Equal(t, "KES 199.99", pricing.FormatAmount(199.994))
	assert.Equal(t, "KES 200.00", pricing.FormatAmount(199.996))
}
