// Package directoryv1 is the read-only shop directory contract served by
// shop-service. Messages are plain structs carried with the grpcx JSON codec.
package directoryv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "barberbook.directory.v1.Directory"

const (
	GetShopMethod      = "/" + ServiceName + "/GetShop"
	ListServicesMethod = "/" + ServiceName + "/ListServices"
	GetServiceMethod   = "/" + ServiceName + "/GetService"
)

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

type Shop struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Address      string              `json:"address"`
	Phone        string              `json:"phone"`
	Logo         string              `json:"logo"`
	IsOpen       bool                `json:"isOpen"`
	OpeningHours map[string]DayHours `json:"openingHours"`
}

// Service prices travel as decimal strings to avoid float rounding.
type Service struct {
	ID              string `json:"id"`
	ShopID          string `json:"shopId"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration"`
	Description     string `json:"description"`
	Image           string `json:"image"`
}

type GetShopRequest struct {
	ShopID string `json:"shopId"`
}

type GetShopResponse struct {
	Shop Shop `json:"shop"`
}

type ListServicesRequest struct {
	ShopID string `json:"shopId"`
}

type ListServicesResponse struct {
	Services []Service `json:"services"`
}

type GetServiceRequest struct {
	ShopID    string `json:"shopId"`
	ServiceID string `json:"serviceId"`
}

type GetServiceResponse struct {
	Service Service `json:"service"`
}

type DirectoryServer interface {
	GetShop(context.Context, *GetShopRequest) (*GetShopResponse, error)
	ListServices(context.Context, *ListServicesRequest) (*ListServicesResponse, error)
	GetService(context.Context, *GetServiceRequest) (*GetServiceResponse, error)
}

func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetShop", Handler: getShopHandler},
		{MethodName: "ListServices", Handler: listServicesHandler},
		{MethodName: "GetService", Handler: getServiceHandler},
	},
	Metadata: "barberbook/directory/v1/directory.json",
}

func getShopHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetShopRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).GetShop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetShopMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).GetShop(ctx, req.(*GetShopRequest))
	})
}

func listServicesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListServicesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).ListServices(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListServicesMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).ListServices(ctx, req.(*ListServicesRequest))
	})
}

func getServiceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetServiceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).GetService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetServiceMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).GetService(ctx, req.(*GetServiceRequest))
	})
}

type DirectoryClient interface {
	GetShop(ctx context.Context, in *GetShopRequest, opts ...grpc.CallOption) (*GetShopResponse, error)
	ListServices(ctx context.Context, in *ListServicesRequest, opts ...grpc.CallOption) (*ListServicesResponse, error)
	GetService(ctx context.Context, in *GetServiceRequest, opts ...grpc.CallOption) (*GetServiceResponse, error)
}

type directoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) DirectoryClient {
	return &directoryClient{cc: cc}
}

func (c *directoryClient) GetShop(ctx context.Context, in *GetShopRequest, opts ...grpc.CallOption) (*GetShopResponse, error) {
	out := new(GetShopResponse)
	if err := c.cc.Invoke(ctx, GetShopMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *directoryClient) ListServices(ctx context.Context, in *ListServicesRequest, opts ...grpc.CallOption) (*ListServicesResponse, error) {
	out := new(ListServicesResponse)
	if err := c.cc.Invoke(ctx, ListServicesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *directoryClient) GetService(ctx context.Context, in *GetServiceRequest, opts ...grpc.CallOption) (*GetServiceResponse, error) {
	out := new(GetServiceResponse)
	if err := c.cc.Invoke(ctx, GetServiceMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
