package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/shop"
	"github.com/shopspring/decimal"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetShop(ctx context.Context, shopID string) (shop.Profile, error) {
	var (
		p     shop.Profile
		hours []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, address, phone, logo, is_open, opening_hours, notes, updated_at
		FROM shops
		WHERE id = $1
	`, shopID).Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.Logo, &p.IsOpen, &hours, &p.Notes, &p.UpdatedAt)
	if db.IsNoRows(err) {
		return shop.Profile{}, shop.ErrNotFound
	}
	if err != nil {
		return shop.Profile{}, err
	}
	if err := json.Unmarshal(hours, &p.OpeningHours); err != nil {
		return shop.Profile{}, fmt.Errorf("decode opening hours: %w", err)
	}
	return p, nil
}

// exec runs a single-row update and reports a missing shop as ErrNotFound.
func (r *Repository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, shopID string, in shop.ProfileInput) error {
	return r.exec(ctx, `
		UPDATE shops
		SET name = $2, address = $3, phone = $4, updated_at = now()
		WHERE id = $1
	`, shopID, in.Name, in.Address, in.Phone)
}

func (r *Repository) SetOpen(ctx context.Context, shopID string, open bool) error {
	return r.exec(ctx, `UPDATE shops SET is_open = $2, updated_at = now() WHERE id = $1`, shopID, open)
}

func (r *Repository) SetHours(ctx context.Context, shopID string, hours map[string]shop.DayHours) error {
	raw, err := json.Marshal(hours)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE shops SET opening_hours = $2, updated_at = now() WHERE id = $1`, shopID, raw)
}

func (r *Repository) SetNotes(ctx context.Context, shopID, notes string) error {
	return r.exec(ctx, `UPDATE shops SET notes = $2, updated_at = now() WHERE id = $1`, shopID, notes)
}

func (r *Repository) SetLogo(ctx context.Context, shopID, logo string) error {
	return r.exec(ctx, `UPDATE shops SET logo = $2, updated_at = now() WHERE id = $1`, shopID, logo)
}

const serviceColumns = `id::text, shop_id, name, price::text, duration_minutes, description, image, created_at, updated_at`

func scanService(row pgx.Row) (shop.Service, error) {
	var (
		s     shop.Service
		price string
	)
	if err := row.Scan(&s.ID, &s.ShopID, &s.Name, &price, &s.DurationMinutes, &s.Description, &s.Image, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return shop.Service{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return shop.Service{}, fmt.Errorf("decode price %q: %w", price, err)
	}
	s.Price = p
	return s, nil
}

// ListServices orders by name, case-insensitively.
func (r *Repository) ListServices(ctx context.Context, shopID string) ([]shop.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM shop_services
		WHERE shop_id = $1
		ORDER BY lower(name), id
	`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetService(ctx context.Context, shopID, serviceID string) (shop.Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM shop_services
		WHERE shop_id = $1 AND id::text = $2
	`, shopID, serviceID))
	if db.IsNoRows(err) {
		return shop.Service{}, shop.ErrNotFound
	}
	return s, err
}

func (r *Repository) CreateService(ctx context.Context, shopID string, d shop.ServiceDraft) (shop.Service, error) {
	now := time.Now().UTC()
	return scanService(r.pool.QueryRow(ctx, `
		INSERT INTO shop_services (id, shop_id, name, price, duration_minutes, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $8)
		RETURNING `+serviceColumns,
		uuid.NewString(), shopID, d.Name, d.Price.StringFixed(2), d.DurationMinutes, d.Description, d.Image, now))
}

func (r *Repository) UpdateService(ctx context.Context, shopID, serviceID string, d shop.ServiceDraft) (shop.Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx, `
		UPDATE shop_services
		SET name = $3, price = $4::numeric, duration_minutes = $5, description = $6, image = $7, updated_at = now()
		WHERE shop_id = $1 AND id::text = $2
		RETURNING `+serviceColumns,
		shopID, serviceID, d.Name, d.Price.StringFixed(2), d.DurationMinutes, d.Description, d.Image))
	if db.IsNoRows(err) {
		return shop.Service{}, shop.ErrNotFound
	}
	return s, err
}

func (r *Repository) DeleteService(ctx context.Context, shopID, serviceID string) error {
	return r.exec(ctx, `DELETE FROM shop_services WHERE shop_id = $1 AND id::text = $2`, shopID, serviceID)
}
