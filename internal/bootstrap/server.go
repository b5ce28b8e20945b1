package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/Domenick1991/flightops/config"
	bookingsapi "github.com/Domenick1991/flightops/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/flightops/internal/api/flights_service_api"
	"github.com/Domenick1991/flightops/internal/service/booking"
	"github.com/Domenick1991/flightops/internal/service/flights"
	"github.com/Domenick1991/flightops/internal/service/passengers"
)

const shutdownTimeout = 5 * time.Second

// Services bundles the use cases exposed over HTTP and gRPC.
type Services struct {
	Bookings   booking.BookingUseCase
	Flights    flights.FlightUseCase
	Passengers passengers.PassengerUseCase
	// Health is pinged by /healthz.
	Health Pinger
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	log        *logrus.Entry
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or
// one of them fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, log *logrus.Entry) error {
	s := newServers(cfg, svc, log)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	errCh := make(chan error, 2)
	go func() {
		s.log.WithField("address", cfg.GRPC.Address).Info("gRPC server started")
		errCh <- s.grpcServer.Serve(lis)
	}()
	go func() {
		s.log.WithField("address", cfg.HTTP.Address).Info("HTTP server started")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, svc Services, log *logrus.Entry) *Servers {
	log = log.WithField("component", "server")

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(log)))
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(svc.Bookings))
	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(svc.Flights))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg.HTTP, svc, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}
