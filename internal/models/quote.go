package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketQuote is what the listing, banner and checkout surfaces render for a
// single ticket at a given instant.
type TicketQuote struct {
	TicketID            string    `json:"ticket_id"`
	Name                string    `json:"name"`
	BasePrice           float64   `json:"base_price"`
	EffectivePrice      float64   `json:"effective_price"`
	FlashSaleActive     bool      `json:"flash_sale_active"`
	DiscountLabel       string    `json:"discount_label,omitempty"`
	State               string    `json:"state"`
	PurchasableQuantity int       `json:"purchasable_quantity"`
	LowStock            bool      `json:"low_stock"`
	DiscountCodeAllowed bool      `json:"discount_code_allowed"`
	QuotedAt            time.Time `json:"quoted_at"`
}

// CartLineRequest is one line of a cart as submitted by the checkout UI.
type CartLineRequest struct {
	TicketTypeID string   `json:"ticket_type_id"`
	Quantity     Quantity `json:"quantity"`
}

type CartQuoteLine struct {
	TicketTypeID string  `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	LineTotal    float64 `json:"line_total"`
	Savings      float64 `json:"savings"`
}

type CartQuote struct {
	Lines        []CartQuoteLine `json:"lines"`
	Total        float64         `json:"total"`
	TotalSavings float64         `json:"total_savings"`
	QuotedAt     time.Time       `json:"quoted_at"`
}

// CheckoutRequest carries the client-computed total alongside the lines so the
// service can detect a flash sale expiring between "Continue to Payment" and
// the request arriving.
type CheckoutRequest struct {
	Lines       []CartLineRequest `json:"lines"`
	ClientTotal Amount            `json:"client_total"`
}

type CheckoutResponse struct {
	ConfirmationID string    `json:"confirmation_id"`
	Total          float64   `json:"total"`
	Pass           string    `json:"pass,omitempty"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

type ConfirmationLine struct {
	TicketTypeID string  `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"price"`
}

// PriceConfirmation is the durable record of a server-confirmed cart total.
// Lines are serialised to JSON by the DB layer so the same model works on
// Postgres and the in-memory SQLite used in tests.
type PriceConfirmation struct {
	bun.BaseModel `bun:"table:price_confirmations"`

	ID          string             `bun:"id,pk" json:"id"`
	Total       float64            `bun:"total,notnull" json:"total"`
	LinesJSON   string             `bun:"lines_json,notnull" json:"-"`
	Lines       []ConfirmationLine `bun:"-" json:"lines"`
	ConfirmedAt time.Time          `bun:"confirmed_at,notnull" json:"confirmed_at"`
}

// FlashSaleExpired is published when the clock watcher sees a sale cross its
// end date.
type FlashSaleExpired struct {
	FlashSaleID string    `json:"flash_sale_id"`
	TicketID    string    `json:"ticket_id"`
	EndedAt     time.Time `json:"ended_at"`
	DetectedAt  time.Time `json:"detected_at"`
}
