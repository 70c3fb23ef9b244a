package grpcserver

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/barberbook/libs/rpc/directoryv1"
	"github.com/md-rashed-zaman/barberbook/services/shop-service/internal/shop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Reader is the read side of the shop repository.
type Reader interface {
	GetShop(ctx context.Context, shopID string) (shop.Profile, error)
	ListServices(ctx context.Context, shopID string) ([]shop.Service, error)
	GetService(ctx context.Context, shopID, serviceID string) (shop.Service, error)
}

type server struct {
	repo Reader
}

func Register(s grpc.ServiceRegistrar, repo Reader) {
	directoryv1.RegisterDirectoryServer(s, &server{repo: repo})
}

func (s *server) GetShop(ctx context.Context, req *directoryv1.GetShopRequest) (*directoryv1.GetShopResponse, error) {
	if req.ShopID == "" {
		return nil, status.Error(codes.InvalidArgument, "shop id is required")
	}
	p, err := s.repo.GetShop(ctx, req.ShopID)
	if err != nil {
		return nil, toStatus(err)
	}
	hours := make(map[string]directoryv1.DayHours, len(p.OpeningHours))
	for day, h := range p.OpeningHours {
		hours[day] = directoryv1.DayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
	}
	return &directoryv1.GetShopResponse{Shop: directoryv1.Shop{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		Phone:        p.Phone,
		Logo:         p.Logo,
		IsOpen:       p.IsOpen,
		OpeningHours: hours,
	}}, nil
}

func (s *server) ListServices(ctx context.Context, req *directoryv1.ListServicesRequest) (*directoryv1.ListServicesResponse, error) {
	if req.ShopID == "" {
		return nil, status.Error(codes.InvalidArgument, "shop id is required")
	}
	list, err := s.repo.ListServices(ctx, req.ShopID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]directoryv1.Service, len(list))
	for i, svc := range list {
		out[i] = toWire(svc)
	}
	return &directoryv1.ListServicesResponse{Services: out}, nil
}

func (s *server) GetService(ctx context.Context, req *directoryv1.GetServiceRequest) (*directoryv1.GetServiceResponse, error) {
	if req.ShopID == "" || req.ServiceID == "" {
		return nil, status.Error(codes.InvalidArgument, "shop id and service id are required")
	}
	svc, err := s.repo.GetService(ctx, req.ShopID, req.ServiceID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &directoryv1.GetServiceResponse{Service: toWire(svc)}, nil
}

func toWire(s shop.Service) directoryv1.Service {
	return directoryv1.Service{
		ID:              s.ID,
		ShopID:          s.ShopID,
		Name:            s.Name,
		Price:           s.Price.StringFixed(2),
		DurationMinutes: s.DurationMinutes,
		Description:     s.Description,
		Image:           s.Image,
	}
}

func toStatus(err error) error {
	if errors.Is(err, shop.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Unavailable, "directory backend unavailable")
}
