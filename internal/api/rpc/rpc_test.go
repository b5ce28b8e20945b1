package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type seatRequest struct {
	FlightID int64  `json:"flight_id"`
	SeatNo   string `json:"seat_no"`
}

func TestEncodeDecode(t *testing.T) {
	in, err := Encode(seatRequest{FlightID: 42, SeatNo: "12A"})
	require.NoError(t, err)
	assert.Equal(t, float64(42), in.Fields["flight_id"].GetNumberValue())

	var out seatRequest
	require.NoError(t, Decode(in, &out))
	assert.Equal(t, seatRequest{FlightID: 42, SeatNo: "12A"}, out)
}

func TestDecode_WrongType(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"flight_id": "forty-two"})
	require.NoError(t, err)

	var out seatRequest
	err = Decode(in, &out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_UsesInterceptor(t *testing.T) {
	called := false
	h := Handler("/test.Service/Echo", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return in, nil
	})

	dec := func(v any) error {
		v.(*structpb.Struct).Fields = map[string]*structpb.Value{"seat_no": structpb.NewStringValue("12A")}
		return nil
	}
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		called = true
		assert.Equal(t, "/test.Service/Echo", info.FullMethod)
		return handler(ctx, req)
	}

	out, err := h(nil, context.Background(), dec, interceptor)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "12A", out.(*structpb.Struct).Fields["seat_no"].GetStringValue())
}
