// Package rpc carries the plumbing shared by the gRPC services. Messages
// are google.protobuf.Struct values whose fields mirror the JSON bodies of
// the HTTP API, so no generated stubs are needed.
package rpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// UnaryFunc is a unary method body bound to its service implementation.
type UnaryFunc func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// Handler adapts call to grpc.MethodHandler, routing through the server
// interceptor chain when one is installed.
func Handler(fullMethod string, call UnaryFunc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Decode unmarshals in into dst using the JSON field names of dst.
func Decode(in *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// Encode converts v to a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// Invoke calls a unary Struct method on conn.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, fullMethod string, in any) (*structpb.Struct, error) {
	req, err := Encode(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, fullMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
