package quote

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"time"

	"ms-pricing/internal/availability"
	"ms-pricing/internal/logger"
	"ms-pricing/internal/models"
	"ms-pricing/internal/pricing"

	"github.com/google/uuid"
)

// ErrTicketNotFound is returned when a quoted ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrInvalidRequest covers structurally bad checkout input (no priceable
// lines, unparseable client total).
var ErrInvalidRequest = errors.New("invalid checkout request")

// PriceChangedError means the cart total the client computed no longer holds,
// typically because a flash sale expired between "Continue to Payment" and the
// request arriving. The checkout is rejected so the buyer re-confirms at the
// fresh total instead of being silently charged a different amount.
type PriceChangedError struct {
	ClientTotal float64
	ServerTotal float64
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("price changed: client total %.2f, server total %.2f", e.ClientTotal, e.ServerTotal)
}

// Totals within half a cent are the same money.
const totalTolerance = 0.005

type DBLayer interface {
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	ListTicketsOnFlashSale(ctx context.Context) ([]models.Ticket, error)
	UpdateRemainingTickets(ctx context.Context, ticketID string, remaining int) error
	UpdateFlashSaleRemaining(ctx context.Context, ticketID string, remaining int) error
	RecordConfirmation(ctx context.Context, conf models.PriceConfirmation) error
}

type SnapshotCache interface {
	GetRemaining(ctx context.Context, ticketID string) (int, bool, error)
	SetRemaining(ctx context.Context, ticketID string, remaining int) error
}

type EventPublisher interface {
	PublishPriceConfirmed(conf models.PriceConfirmation) error
	PublishFlashSaleExpired(ev models.FlashSaleExpired) error
}

type PassIssuer interface {
	IssuePass(conf models.PriceConfirmation) ([]byte, error)
}

// QuoteService composes the pure pricing and availability functions with
// ticket master data. All time-dependent answers take `now` explicitly so the
// same code path serves live traffic and tests.
type QuoteService struct {
	DB     DBLayer
	Cache  SnapshotCache
	Events EventPublisher
	Passes PassIssuer
	Logger *logger.Logger
}

func NewQuoteService(db DBLayer, cache SnapshotCache, events EventPublisher, passes PassIssuer, log *logger.Logger) *QuoteService {
	return &QuoteService{DB: db, Cache: cache, Events: events, Passes: passes, Logger: log}
}

// loadTicket reads master data and overlays the snapshot cache's fresher
// remaining count when one exists.
func (s *QuoteService) loadTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
		}
		return nil, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}

	if s.Cache != nil {
		remaining, ok, err := s.Cache.GetRemaining(ctx, ticketID)
		if err != nil {
			s.warn("CACHE", fmt.Sprintf("snapshot read failed for ticket %s: %v", ticketID, err))
		} else if ok {
			ticket.RemainingTickets = remaining
		}
	}

	return ticket, nil
}

// QuoteTicket evaluates a single ticket at the given instant.
func (s *QuoteService) QuoteTicket(ctx context.Context, ticketID string, now time.Time) (*models.TicketQuote, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.buildQuote(*ticket, now)
}

func (s *QuoteService) buildQuote(ticket models.Ticket, now time.Time) (*models.TicketQuote, error) {
	effective, err := pricing.EffectiveUnitPrice(ticket, now)
	if err != nil {
		return nil, err
	}
	base, err := ticket.Price.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: price: %v", pricing.ErrInvalidPriceData, err)
	}

	saleValid := pricing.IsFlashSaleValid(ticket.FlashSale, now)
	label := ""
	if saleValid {
		label = pricing.DiscountLabel(ticket.FlashSale)
	}

	return &models.TicketQuote{
		TicketID:            ticket.ID,
		Name:                ticket.Name,
		BasePrice:           base,
		EffectivePrice:      effective,
		FlashSaleActive:     saleValid,
		DiscountLabel:       label,
		State:               availability.TicketState(ticket, now),
		PurchasableQuantity: availability.PurchasableQuantity(ticket, now),
		LowStock:            availability.ShouldWarnLowStock(ticket, now),
		// A flash sale in effect suppresses the discount-code input
		DiscountCodeAllowed: !saleValid,
		QuotedAt:            now,
	}, nil
}

// QuoteCart prices a submitted cart. Lines with non-positive quantities are
// skipped, matching the engine's exclusion rule; a bad quantity on one line
// must not take down the rest of the cart.
func (s *QuoteService) QuoteCart(ctx context.Context, lines []models.CartLineRequest, now time.Time) (*models.CartQuote, error) {
	cart := &models.CartQuote{QuotedAt: now}

	for _, line := range lines {
		qty := int(line.Quantity)
		if qty <= 0 {
			continue
		}

		ticket, err := s.loadTicket(ctx, line.TicketTypeID)
		if err != nil {
			return nil, err
		}

		unit, err := pricing.EffectiveUnitPrice(*ticket, now)
		if err != nil {
			return nil, err
		}

		savings := pricing.LineSavings(*ticket, qty, now)
		cart.Lines = append(cart.Lines, models.CartQuoteLine{
			TicketTypeID: ticket.ID,
			Quantity:     qty,
			UnitPrice:    unit,
			LineTotal:    unit * float64(qty),
			Savings:      savings,
		})
		cart.Total += unit * float64(qty)
		cart.TotalSavings += savings
	}

	return cart, nil
}

// ConfirmCheckout recomputes the cart server-side and compares against the
// client's total. On agreement the confirmation is recorded, published, and a
// QR pass issued; on drift the checkout is rejected with the fresh total.
func (s *QuoteService) ConfirmCheckout(ctx context.Context, req models.CheckoutRequest, now time.Time) (*models.CheckoutResponse, error) {
	clientTotal, err := req.ClientTotal.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: client_total: %v", ErrInvalidRequest, err)
	}

	cart, err := s.QuoteCart(ctx, req.Lines, now)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("%w: no purchasable lines", ErrInvalidRequest)
	}

	if math.Abs(cart.Total-clientTotal) > totalTolerance {
		return nil, &PriceChangedError{ClientTotal: clientTotal, ServerTotal: cart.Total}
	}

	conf := models.PriceConfirmation{
		ID:          uuid.NewString(),
		Total:       cart.Total,
		ConfirmedAt: now,
	}
	for _, line := range cart.Lines {
		conf.Lines = append(conf.Lines, models.ConfirmationLine{
			TicketTypeID: line.TicketTypeID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
		})
	}

	if err := s.DB.RecordConfirmation(ctx, conf); err != nil {
		return nil, fmt.Errorf("record confirmation: %w", err)
	}

	if s.Events != nil {
		if err := s.Events.PublishPriceConfirmed(conf); err != nil {
			s.warn("KAFKA", fmt.Sprintf("publish price confirmation %s: %v", conf.ID, err))
		}
	}

	resp := &models.CheckoutResponse{
		ConfirmationID: conf.ID,
		Total:          conf.Total,
		ConfirmedAt:    now,
	}

	if s.Passes != nil {
		png, err := s.Passes.IssuePass(conf)
		if err != nil {
			s.warn("PASSES", fmt.Sprintf("issue pass for confirmation %s: %v", conf.ID, err))
		} else {
			resp.Pass = base64.StdEncoding.EncodeToString(png)
		}
	}

	if s.Logger != nil {
		s.Logger.LogQuote("cart", "CONFIRMED", conf.Total)
	}
	return resp, nil
}

// warn logs when a logger is wired; unit tests run without one.
func (s *QuoteService) warn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

// ApplyInventoryUpdate overwrites local stock from an upstream event and
// refreshes the snapshot cache.
func (s *QuoteService) ApplyInventoryUpdate(ctx context.Context, update models.InventoryUpdate) error {
	if err := s.DB.UpdateRemainingTickets(ctx, update.TicketID, update.RemainingTickets); err != nil {
		return fmt.Errorf("update remaining for ticket %s: %w", update.TicketID, err)
	}
	if update.FlashSaleRemaining != nil {
		if err := s.DB.UpdateFlashSaleRemaining(ctx, update.TicketID, *update.FlashSaleRemaining); err != nil {
			return fmt.Errorf("update flash sale remaining for ticket %s: %w", update.TicketID, err)
		}
	}
	if s.Cache != nil {
		if err := s.Cache.SetRemaining(ctx, update.TicketID, update.RemainingTickets); err != nil {
			s.warn("CACHE", fmt.Sprintf("snapshot write failed for ticket %s: %v", update.TicketID, err))
		}
	}
	return nil
}
