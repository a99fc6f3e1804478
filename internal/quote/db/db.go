package db

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-pricing/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetTicketByID loads a ticket together with its attached flash sale, if any.
func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Relation("FlashSale").
		Where("ticket.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTicketsOnFlashSale returns every ticket whose flash sale is
// administratively active. The time window is evaluated by the caller; the
// row just has to exist and not be switched off.
func (d *DB) ListTicketsOnFlashSale(ctx context.Context) ([]models.Ticket, error) {
	var sales []models.FlashSale
	err := d.Bun.NewSelect().
		Model(&sales).
		Where("status = ?", models.FlashSaleActive).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(sales))
	for _, fs := range sales {
		ids = append(ids, fs.TicketID)
	}

	var tickets []models.Ticket
	err = d.Bun.NewSelect().
		Model(&tickets).
		Relation("FlashSale").
		Where("ticket.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateRemainingTickets overwrites a ticket's remaining count with the
// server-supplied snapshot.
func (d *DB) UpdateRemainingTickets(ctx context.Context, ticketID string, remaining int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("remaining_tickets = ?", remaining).
		Where("id = ?", ticketID).
		Exec(ctx)
	return err
}

// UpdateFlashSaleRemaining overwrites the flash-sale-specific counter for the
// sale attached to the given ticket.
func (d *DB) UpdateFlashSaleRemaining(ctx context.Context, ticketID string, remaining int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.FlashSale)(nil)).
		Set("remaining_tickets = ?", remaining).
		Where("ticket_id = ?", ticketID).
		Exec(ctx)
	return err
}

// RecordConfirmation persists a price confirmation. Lines are serialised to
// JSON so the same schema works on Postgres and the SQLite used in tests.
func (d *DB) RecordConfirmation(ctx context.Context, conf models.PriceConfirmation) error {
	linesJSON, err := json.Marshal(conf.Lines)
	if err != nil {
		return fmt.Errorf("marshal confirmation lines: %w", err)
	}
	conf.LinesJSON = string(linesJSON)

	_, err = d.Bun.NewInsert().Model(&conf).Exec(ctx)
	return err
}

// GetConfirmationByID loads a recorded confirmation with its lines decoded.
func (d *DB) GetConfirmationByID(ctx context.Context, id string) (*models.PriceConfirmation, error) {
	var conf models.PriceConfirmation
	err := d.Bun.NewSelect().
		Model(&conf).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if conf.LinesJSON != "" {
		if err := json.Unmarshal([]byte(conf.LinesJSON), &conf.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal confirmation lines: %w", err)
		}
	}
	return &conf, nil
}
