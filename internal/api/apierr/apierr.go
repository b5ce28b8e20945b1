// Package apierr maps service errors onto transport status codes. The
// gRPC code is the source of truth; HTTP statuses derive from it with the
// grpc-gateway table.
package apierr

import (
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/flightops/internal/domain"
)

func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindConflict:
		// FailedPrecondition maps to HTTP 400.
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(Code(err))
}

// GRPC converts err to a status error carrying only the public message.
func GRPC(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(Code(err), domain.PublicMessage(err))
}
