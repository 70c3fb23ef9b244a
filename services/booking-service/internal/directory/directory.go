// Package directory resolves shops and their services for the storefront,
// either from shop-service over gRPC or from the shared database.
package directory

import (
	"context"
	"fmt"

	"github.com/md-rashed-zaman/barberbook/libs/rpc/directoryv1"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned for a missing shop or service.
var ErrNotFound = model.ErrNotFound

type Provider interface {
	GetShop(ctx context.Context, shopID string) (model.Shop, error)
	ListServices(ctx context.Context, shopID string) ([]model.Service, error)
	GetService(ctx context.Context, shopID, serviceID string) (model.Service, error)
}

type GRPCProvider struct {
	client directoryv1.DirectoryClient
}

func NewGRPCProvider(cc grpc.ClientConnInterface) *GRPCProvider {
	return &GRPCProvider{client: directoryv1.NewDirectoryClient(cc)}
}

func (p *GRPCProvider) GetShop(ctx context.Context, shopID string) (model.Shop, error) {
	resp, err := p.client.GetShop(ctx, &directoryv1.GetShopRequest{ShopID: shopID})
	if err != nil {
		return model.Shop{}, mapErr(err)
	}
	s := resp.Shop
	hours := make(map[string]model.DayHours, len(s.OpeningHours))
	for day, h := range s.OpeningHours {
		hours[day] = model.DayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
	}
	return model.Shop{
		ID:           s.ID,
		Name:         s.Name,
		Address:      s.Address,
		Phone:        s.Phone,
		Logo:         s.Logo,
		IsOpen:       s.IsOpen,
		OpeningHours: hours,
	}, nil
}

func (p *GRPCProvider) ListServices(ctx context.Context, shopID string) ([]model.Service, error) {
	resp, err := p.client.ListServices(ctx, &directoryv1.ListServicesRequest{ShopID: shopID})
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]model.Service, 0, len(resp.Services))
	for _, s := range resp.Services {
		svc, err := fromWire(s)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}

func (p *GRPCProvider) GetService(ctx context.Context, shopID, serviceID string) (model.Service, error) {
	resp, err := p.client.GetService(ctx, &directoryv1.GetServiceRequest{ShopID: shopID, ServiceID: serviceID})
	if err != nil {
		return model.Service{}, mapErr(err)
	}
	return fromWire(resp.Service)
}

func fromWire(s directoryv1.Service) (model.Service, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return model.Service{}, fmt.Errorf("service %s price %q: %w", s.ID, s.Price, err)
	}
	return model.Service{
		ID:              s.ID,
		ShopID:          s.ShopID,
		Name:            s.Name,
		Price:           price,
		DurationMinutes: s.DurationMinutes,
		Description:     s.Description,
		Image:           s.Image,
	}, nil
}

func mapErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf("directory rpc: %w", err)
}
