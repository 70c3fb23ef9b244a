package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

// DirectoryRepository reads shops and services straight from the shared
// database, for deployments without the shop-service gRPC endpoint.
type DirectoryRepository struct {
	pool *db.Pool
}

func NewDirectoryRepository(pool *db.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

func (r *DirectoryRepository) GetShop(ctx context.Context, shopID string) (model.Shop, error) {
	var (
		s     model.Shop
		hours []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, address, phone, logo, is_open, opening_hours
		FROM shops WHERE id = $1
	`, shopID).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Logo, &s.IsOpen, &hours)
	if db.IsNoRows(err) {
		return model.Shop{}, model.ErrNotFound
	}
	if err != nil {
		return model.Shop{}, err
	}
	if err := json.Unmarshal(hours, &s.OpeningHours); err != nil {
		return model.Shop{}, fmt.Errorf("decode opening hours: %w", err)
	}
	return s, nil
}

const serviceColumns = `id::text, shop_id, name, price::text, duration_minutes, description, image`

func (r *DirectoryRepository) ListServices(ctx context.Context, shopID string) ([]model.Service, error) {
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

	var out []model.Service
	for rows.Next() {
		var (
			s     model.Service
			price string
		)
		if err := rows.Scan(&s.ID, &s.ShopID, &s.Name, &price, &s.DurationMinutes, &s.Description, &s.Image); err != nil {
			return nil, err
		}
		if s.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("decode price: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *DirectoryRepository) GetService(ctx context.Context, shopID, serviceID string) (model.Service, error) {
	var (
		s     model.Service
		price string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM shop_services
		WHERE shop_id = $1 AND id::text = $2
	`, shopID, serviceID).Scan(&s.ID, &s.ShopID, &s.Name, &price, &s.DurationMinutes, &s.Description, &s.Image)
	if db.IsNoRows(err) {
		return model.Service{}, model.ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	if s.Price, err = decimal.NewFromString(price); err != nil {
		return model.Service{}, fmt.Errorf("decode price: %w", err)
	}
	return s, nil
}
