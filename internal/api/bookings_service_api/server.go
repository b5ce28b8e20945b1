package bookings_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Domenick1991/flightops/internal/api/apierr"
	"github.com/Domenick1991/flightops/internal/api/rpc"
	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/service/booking"
)

const ServiceName = "flightops.v1.BookingsService"

const (
	MethodCreatePassengerWithBooking = "/" + ServiceName + "/CreatePassengerWithBooking"
	MethodCreateBooking              = "/" + ServiceName + "/CreateBooking"
	MethodGetBooking                 = "/" + ServiceName + "/GetBooking"
	MethodCancelBooking              = "/" + ServiceName + "/CancelBooking"
)

type BookingsServiceServer interface {
	CreatePassengerWithBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreatePassengerWithBooking",
			Handler: rpc.Handler(MethodCreatePassengerWithBooking, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(BookingsServiceServer).CreatePassengerWithBooking(ctx, in)
			}),
		},
		{
			MethodName: "CreateBooking",
			Handler: rpc.Handler(MethodCreateBooking, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(BookingsServiceServer).CreateBooking(ctx, in)
			}),
		},
		{
			MethodName: "GetBooking",
			Handler: rpc.Handler(MethodGetBooking, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(BookingsServiceServer).GetBooking(ctx, in)
			}),
		},
		{
			MethodName: "CancelBooking",
			Handler: rpc.Handler(MethodCancelBooking, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(BookingsServiceServer).CancelBooking(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightops/v1/bookings.proto",
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server implements the bookings gRPC service on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

type bookingIDRequest struct {
	BookingID int64 `json:"booking_id"`
}

type createWithBookingReply struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	BookingID   int64  `json:"booking_id"`
	PassengerID int64  `json:"passenger_id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Method      string `json:"method"`
}

type bookingReply struct {
	Success bool                   `json:"success"`
	Booking *domain.BookingDetails `json:"booking"`
}

func (s *Server) CreatePassengerWithBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req booking.CreatePassengerBookingInput
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	result, err := s.bookings.CreatePassengerWithBooking(ctx, req)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(createWithBookingReply{
		Success:     true,
		Message:     "Passenger and booking created successfully",
		BookingID:   result.BookingID,
		PassengerID: result.PassengerID,
		FirstName:   result.FirstName,
		LastName:    result.LastName,
		Method:      string(result.Method),
	})
}

func (s *Server) CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req booking.CreateBookingInput
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	created, err := s.bookings.CreateBooking(ctx, req)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(map[string]any{
		"success":    true,
		"message":    "Booking created successfully",
		"booking_id": created.ID,
	})
}

func (s *Server) GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingIDRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(bookingReply{Success: true, Booking: b})
}

func (s *Server) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bookingIDRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	b, err := s.bookings.CancelBooking(ctx, req.BookingID)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return rpc.Encode(bookingReply{Success: true, Booking: b})
}

var _ BookingsServiceServer = (*Server)(nil)
