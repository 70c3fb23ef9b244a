package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/shopspring/decimal"
)

const slotIndex = "appointments_slot_uq"

type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func occupied(ctx context.Context, q querier, shopID, date, tm string, includeCancelled bool) (bool, error) {
	var taken bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE shop_id = $1 AND date = $2 AND time = $3
			  AND ($4 OR status <> 'cancelled')
		)
	`, shopID, date, tm, includeCancelled).Scan(&taken)
	return taken, err
}

func (r *AppointmentRepository) Occupied(ctx context.Context, shopID, date, tm string, includeCancelled bool) (bool, error) {
	return occupied(ctx, r.pool, shopID, date, tm, includeCancelled)
}

func (r *AppointmentRepository) TakenTimes(ctx context.Context, shopID, date string, includeCancelled bool) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT time FROM appointments
		WHERE shop_id = $1 AND date = $2 AND ($3 OR status <> 'cancelled')
	`, shopID, date, includeCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := map[string]bool{}
	for rows.Next() {
		var tm string
		if err := rows.Scan(&tm); err != nil {
			return nil, err
		}
		taken[tm] = true
	}
	return taken, rows.Err()
}

// SlotLockKey is hashed into the advisory lock that serializes bookings of one slot.
func SlotLockKey(shopID, date, tm string) string {
	return shopID + "|" + date + "|" + tm
}

// CreateIfSlotFree holds a transaction scoped advisory lock on the slot while
// it re-checks occupancy and inserts, so two writers cannot both pass the check.
// The partial unique index backs this for live appointments.
func (r *AppointmentRepository) CreateIfSlotFree(ctx context.Context, a model.Appointment, includeCancelled bool, events ...outbox.Event) error {
	services, err := json.Marshal(a.Services)
	if err != nil {
		return fmt.Errorf("encode services: %w", err)
	}

	err = r.pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, SlotLockKey(a.ShopID, a.Date, a.Time)); err != nil {
			return fmt.Errorf("lock slot: %w", err)
		}
		taken, err := occupied(ctx, tx, a.ShopID, a.Date, a.Time, includeCancelled)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrSlotTaken
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, shop_id, client_name, client_phone, date, time, services, total, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, a.ID, a.ShopID, a.ClientName, a.ClientPhone, a.Date, a.Time, services, a.Total.String(), string(a.Status), a.CreatedAt, a.UpdatedAt); err != nil {
			return err
		}
		for _, evt := range events {
			if err := r.outbox.Insert(ctx, tx, evt); err != nil {
				return fmt.Errorf("enqueue %s: %w", evt.EventType, err)
			}
		}
		return nil
	})
	if db.IsUniqueViolation(err, slotIndex) {
		return model.ErrSlotTaken
	}
	return err
}

const appointmentColumns = `id::text, shop_id, client_name, client_phone, date, time, services, total::text, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var (
		a        model.Appointment
		services []byte
		total    string
		status   string
	)
	if err := row.Scan(&a.ID, &a.ShopID, &a.ClientName, &a.ClientPhone, &a.Date, &a.Time, &services, &total, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Appointment{}, err
	}
	if err := json.Unmarshal(services, &a.Services); err != nil {
		return model.Appointment{}, fmt.Errorf("decode services: %w", err)
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("decode total: %w", err)
	}
	a.Total = d
	a.Status = model.Status(status)
	return a, nil
}

// List returns a shop's appointments ordered by date then time. Empty status
// or date means no filter on that column.
func (r *AppointmentRepository) List(ctx context.Context, shopID string, status model.Status, date string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE shop_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR date = $3)
		ORDER BY date, time, created_at
	`, shopID, string(status), date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, shopID, id string, status model.Status, now time.Time, events ...outbox.Event) (model.Appointment, error) {
	var updated model.Appointment
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		a, err := scanAppointment(tx.QueryRow(ctx, `
			UPDATE appointments
			SET status = $3, updated_at = $4
			WHERE shop_id = $1 AND id::text = $2
			RETURNING `+appointmentColumns,
			shopID, id, string(status), now))
		if db.IsNoRows(err) {
			return model.ErrNotFound
		}
		if err != nil {
			return err
		}
		for _, evt := range events {
			if err := r.outbox.Insert(ctx, tx, evt); err != nil {
				return fmt.Errorf("enqueue %s: %w", evt.EventType, err)
			}
		}
		updated = a
		return nil
	})
	if db.IsUniqueViolation(err, slotIndex) {
		return model.Appointment{}, model.ErrSlotTaken
	}
	return updated, err
}

func (r *AppointmentRepository) Delete(ctx context.Context, shopID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE shop_id = $1 AND id::text = $2`, shopID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
