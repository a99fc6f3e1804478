package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ms-pricing/internal/models"
)

// Currency code used on every surface that renders a money label.
const Currency = "KES"

// ErrInvalidPriceData means a ticket's price or a flash sale's discounted
// price could not be parsed as a finite non-negative number. This is an
// upstream data contract violation: it must reach the caller instead of being
// papered over with a zero price shown to a paying customer.
var ErrInvalidPriceData = errors.New("invalid price data")

// IsFlashSaleValid reports whether the flash sale applies at the given
// instant. Both window boundaries are inclusive: a sale is still valid at
// exactly its end date and invalid one instant after. Pure and O(1), safe to
// call from a 1-second poll.
func IsFlashSaleValid(fs *models.FlashSale, now time.Time) bool {
	if fs == nil {
		return false
	}
	if fs.Status != models.FlashSaleActive {
		return false
	}
	if now.Before(fs.StartDate) {
		return false
	}
	if now.After(fs.EndDate) {
		return false
	}
	return true
}

// EffectiveUnitPrice returns the price actually charged per unit at the given
// instant: the flash-sale discounted price while the sale is valid, the base
// price otherwise. The discounted price is taken as supplied upstream, never
// recomputed from the discount amount.
func EffectiveUnitPrice(ticket models.Ticket, now time.Time) (float64, error) {
	if IsFlashSaleValid(ticket.FlashSale, now) {
		return parsePrice(ticket.FlashSale.DiscountedPrice, "discounted_price")
	}
	return parsePrice(ticket.Price, "price")
}

// LineSavings is the amount a buyer saves on quantity units of the ticket
// relative to the base price. Zero whenever no valid flash sale applies, the
// quantity is not positive, or the base price cannot be parsed; a savings
// figure is decoration, unlike the price itself it never blocks rendering.
func LineSavings(ticket models.Ticket, quantity int, now time.Time) float64 {
	if quantity <= 0 {
		return 0
	}
	if !IsFlashSaleValid(ticket.FlashSale, now) {
		return 0
	}
	fs := ticket.FlashSale
	if fs.DiscountAmount < 0 {
		return 0
	}
	basePrice, err := ticket.Price.Float64()
	if err != nil || basePrice < 0 {
		return 0
	}

	switch fs.DiscountType {
	case models.DiscountPercentage:
		return basePrice * (fs.DiscountAmount / 100) * float64(quantity)
	case models.DiscountFixed:
		return fs.DiscountAmount * float64(quantity)
	default:
		return 0
	}
}

// CartTotal sums effective line prices over the cart. Lines with a
// non-positive quantity are skipped silently: a malformed quantity is a
// transient UI input state and must not abort pricing for the rest of the
// cart. An unparseable price on a counted line does abort, see
// ErrInvalidPriceData.
func CartTotal(lines []models.CartLine, now time.Time) (float64, error) {
	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		unit, err := EffectiveUnitPrice(line.Ticket, now)
		if err != nil {
			return 0, err
		}
		total += unit * float64(line.Quantity)
	}
	return total, nil
}

// DiscountLabel renders the badge text shown next to a discounted ticket.
// Every surface uses this one helper so the wording cannot drift.
func DiscountLabel(fs *models.FlashSale) string {
	if fs == nil {
		return ""
	}
	amount := strconv.FormatFloat(fs.DiscountAmount, 'f', -1, 64)
	switch fs.DiscountType {
	case models.DiscountPercentage:
		return fmt.Sprintf("%s%% OFF", amount)
	case models.DiscountFixed:
		return fmt.Sprintf("%s %s OFF", Currency, amount)
	default:
		return ""
	}
}

// FormatAmount renders a money value for display. Rounding to two decimals
// happens here and only here; accumulation keeps full precision so multi-line
// totals do not compound rounding error.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%s %.2f", Currency, v)
}

func parsePrice(a models.Amount, field string) (float64, error) {
	v, err := a.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidPriceData, field, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s: negative value %v", ErrInvalidPriceData, field, v)
	}
	return v, nil
}
