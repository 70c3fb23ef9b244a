package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/barberbook/libs/db"
)

type Notification struct {
	EventID       string
	EventType     string
	ShopID        string
	AppointmentID string
	Channel       string
	Recipient     string
	Status        string
	Error         string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Seen(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inbox_events WHERE event_id = $1)`, eventID).Scan(&exists)
	return exists, err
}

// Record marks the event as handled and stores the attempt atomically.
// It returns false when another consumer already recorded the event.
func (r *Repository) Record(ctx context.Context, n Notification) (bool, error) {
	inserted := false
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO inbox_events (event_id, event_type)
			VALUES ($1, $2)
			ON CONFLICT (event_id) DO NOTHING
		`, n.EventID, n.EventType)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO notifications (id, event_id, shop_id, appointment_id, channel, recipient, status, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.NewString(), n.EventID, n.ShopID, n.AppointmentID, n.Channel, n.Recipient, n.Status, n.Error); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}
