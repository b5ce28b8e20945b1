package flights_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Domenick1991/flightops/internal/api/apierr"
	"github.com/Domenick1991/flightops/internal/api/rpc"
	"github.com/Domenick1991/flightops/internal/service/flights"
)

const ServiceName = "flightops.v1.FlightsService"

const (
	MethodListFlights       = "/" + ServiceName + "/ListFlights"
	MethodGetFlight         = "/" + ServiceName + "/GetFlight"
	MethodGetAvailableSeats = "/" + ServiceName + "/GetAvailableSeats"
	MethodCancelFlight      = "/" + ServiceName + "/CancelFlight"
)

type FlightsServiceServer interface {
	ListFlights(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetAvailableSeats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListFlights",
			Handler: rpc.Handler(MethodListFlights, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(FlightsServiceServer).ListFlights(ctx, in)
			}),
		},
		{
			MethodName: "GetFlight",
			Handler: rpc.Handler(MethodGetFlight, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(FlightsServiceServer).GetFlight(ctx, in)
			}),
		},
		{
			MethodName: "GetAvailableSeats",
			Handler: rpc.Handler(MethodGetAvailableSeats, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(FlightsServiceServer).GetAvailableSeats(ctx, in)
			}),
		},
		{
			MethodName: "CancelFlight",
			Handler: rpc.Handler(MethodCancelFlight, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(FlightsServiceServer).CancelFlight(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightops/v1/flights.proto",
}

func RegisterFlightsServiceServer(s grpc.ServiceRegistrar, srv FlightsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

type flightIDRequest struct {
	FlightID int64 `json:"flight_id"`
}

type cancelFlightRequest struct {
	FlightNo string `json:"flight_no"`
}

func (s *Server) ListFlights(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(map[string]any{"success": true, "flights": list})
}

func (s *Server) GetFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req flightIDRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, req.FlightID)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(map[string]any{"success": true, "flight": flight})
}

func (s *Server) GetAvailableSeats(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req flightIDRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	seats, err := s.flights.AvailableSeats(ctx, req.FlightID)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(map[string]any{"success": true, "flight_id": req.FlightID, "available_seats": seats})
}

func (s *Server) CancelFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req cancelFlightRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	if err := s.flights.CancelFlight(ctx, req.FlightNo); err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(map[string]any{"success": true, "flight_no": req.FlightNo})
}

var _ FlightsServiceServer = (*Server)(nil)
