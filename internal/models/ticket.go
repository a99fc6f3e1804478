package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type FlashSaleStatus string

const (
	FlashSaleActive   FlashSaleStatus = "ACTIVE"
	FlashSaleInactive FlashSaleStatus = "INACTIVE"
)

// FlashSale is a time-boxed discount override on a ticket's price. The
// discounted price is computed upstream and is authoritative; this service
// only decides whether it currently applies.
type FlashSale struct {
	bun.BaseModel `bun:"table:flash_sales"`

	ID              string          `bun:"id,pk" json:"id"`
	TicketID        string          `bun:"ticket_id,notnull" json:"ticket_id"`
	DiscountType    DiscountType    `bun:"discount_type,notnull" json:"discount_type"`
	DiscountAmount  float64         `bun:"discount_amount,notnull" json:"discount_amount"`
	DiscountedPrice Amount          `bun:"discounted_price,notnull" json:"discounted_price"`
	StartDate       time.Time       `bun:"start_date,notnull" json:"start_date"`
	EndDate         time.Time       `bun:"end_date,notnull" json:"end_date"`
	Status          FlashSaleStatus `bun:"status,notnull" json:"status"`

	// Inventory remaining at the flash-sale price specifically. May be lower
	// than the ticket's own remaining count. Nil means the sale has no
	// separate cap.
	RemainingTickets *int `bun:"remaining_tickets,nullzero" json:"remaining_tickets,omitempty"`
}

// Ticket is a ticket type as supplied by the events API. Read-only from the
// pricing engine's perspective.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID               string     `bun:"id,pk" json:"id"`
	EventID          string     `bun:"event_id,notnull" json:"event_id"`
	Name             string     `bun:"name,notnull" json:"name"`
	Price            Amount     `bun:"price,notnull" json:"price"`
	Quantity         int        `bun:"quantity,notnull" json:"quantity"`
	RemainingTickets int        `bun:"remaining_tickets,notnull" json:"remaining_tickets"`
	SaleStartDate    *time.Time `bun:"sale_start_date,nullzero" json:"sale_start_date,omitempty"`
	SaleEndDate      *time.Time `bun:"sale_end_date,nullzero" json:"sale_end_date,omitempty"`

	FlashSale *FlashSale `bun:"rel:has-one,join:id=ticket_id" json:"flash_sale,omitempty"`
}

// CartLine is a ticket plus the quantity a buyer asked for. Ephemeral, owned
// by the checkout surface; passed here by value as a snapshot.
type CartLine struct {
	Ticket   Ticket `json:"ticket"`
	Quantity int    `json:"quantity"`
}

// InventoryUpdate is the payload of the upstream stock events consumed from
// Kafka. Remaining counts only ever decrease from the server's point of view.
type InventoryUpdate struct {
	TicketID           string    `json:"ticket_id"`
	RemainingTickets   int       `json:"remaining_tickets"`
	FlashSaleRemaining *int      `json:"flash_sale_remaining,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}
