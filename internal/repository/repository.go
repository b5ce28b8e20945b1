package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightops/internal/storage"
)

var ErrNotFound = errors.New("record not found")

// Repositories groups the repositories bound to one Querier, either the
// gateway itself or an open transaction.
type Repositories interface {
	Flights() FlightRepository
	Passengers() PassengerRepository
	Bookings() BookingRepository
	Audit() AuditRepository
}

type Transactor interface {
	// WithTransaction runs fn with repositories that share one transaction.
	WithTransaction(ctx context.Context, fn func(tx Repositories) error) error
}

type Store struct {
	gw *storage.Gateway
}

func NewStore(gw *storage.Gateway) *Store {
	return &Store{gw: gw}
}

func (s *Store) Flights() FlightRepository       { return &SQLFlightRepository{q: s.gw} }
func (s *Store) Passengers() PassengerRepository { return &SQLPassengerRepository{q: s.gw} }
func (s *Store) Bookings() BookingRepository     { return &SQLBookingRepository{q: s.gw} }
func (s *Store) Audit() AuditRepository          { return &SQLAuditRepository{q: s.gw} }

func (s *Store) WithTransaction(ctx context.Context, fn func(tx Repositories) error) error {
	return s.gw.WithTransaction(ctx, func(q storage.Querier) error {
		return fn(txRepositories{q: q})
	})
}

type txRepositories struct {
	q storage.Querier
}

func (t txRepositories) Flights() FlightRepository       { return &SQLFlightRepository{q: t.q} }
func (t txRepositories) Passengers() PassengerRepository { return &SQLPassengerRepository{q: t.q} }
func (t txRepositories) Bookings() BookingRepository     { return &SQLBookingRepository{q: t.q} }
func (t txRepositories) Audit() AuditRepository          { return &SQLAuditRepository{q: t.q} }

var (
	_ Repositories = (*Store)(nil)
	_ Transactor   = (*Store)(nil)
	_ Repositories = txRepositories{}
)
