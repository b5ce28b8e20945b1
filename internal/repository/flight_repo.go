package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/storage"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// GetByNumber loads the fields that gate booking: id, number, status, capacity.
	GetByNumber(ctx context.Context, flightNo string) (*domain.Flight, error)
	// NumberTaken reports whether another flight than excludeID uses flightNo.
	NumberTaken(ctx context.Context, flightNo string, excludeID int64) (bool, error)
	AvailableSeats(ctx context.Context, id int64) (int, error)
	ActiveBookings(ctx context.Context, id int64) (int, error)
	// Create inserts f and sets f.ID.
	Create(ctx context.Context, f *domain.Flight) error
	Update(ctx context.Context, f *domain.Flight) error
	// Delete removes the flight together with its bookings.
	Delete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, flightNo string) error
}

type SQLFlightRepository struct {
	q storage.Querier
}

func NewFlightRepository(q storage.Querier) FlightRepository {
	return &SQLFlightRepository{q: q}
}

const flightColumns = `id, flight_no, airline_id, from_airport_id, to_airport_id, departure_time, arrival_time, status, capacity`

func (r *SQLFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	if err := r.q.Query(ctx, &flights, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`); err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *SQLFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var f domain.Flight
	found, err := r.q.QueryOne(ctx, &f, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *SQLFlightRepository) GetByNumber(ctx context.Context, flightNo string) (*domain.Flight, error) {
	var f domain.Flight
	found, err := r.q.QueryOne(ctx, &f, `SELECT id, flight_no, status, capacity FROM flights WHERE flight_no = ?`, flightNo)
	if err != nil {
		return nil, fmt.Errorf("get flight %s: %w", flightNo, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *SQLFlightRepository) NumberTaken(ctx context.Context, flightNo string, excludeID int64) (bool, error) {
	var id int64
	found, err := r.q.QueryOne(ctx, &id, `SELECT id FROM flights WHERE flight_no = ? AND id <> ?`, flightNo, excludeID)
	if err != nil {
		return false, fmt.Errorf("lookup flight %s: %w", flightNo, err)
	}
	return found, nil
}

func (r *SQLFlightRepository) AvailableSeats(ctx context.Context, id int64) (int, error) {
	var seats sql.NullInt64
	if storage.SupportsRoutines(r.q) {
		if err := r.q.CallFunction(ctx, &seats, "fn_get_available_seats", id); err != nil {
			return 0, fmt.Errorf("available seats for flight %d: %w", id, err)
		}
	} else {
		found, err := r.q.QueryOne(ctx, &seats, `
			SELECT f.capacity - (SELECT COUNT(*) FROM bookings b WHERE b.flight_id = f.id AND b.status = ?) AS result
			FROM flights f
			WHERE f.id = ?`, domain.BookingStatusBooked, id)
		if err != nil {
			return 0, fmt.Errorf("available seats for flight %d: %w", id, err)
		}
		if !found {
			return 0, ErrNotFound
		}
	}
	if !seats.Valid {
		return 0, ErrNotFound
	}
	return int(seats.Int64), nil
}

func (r *SQLFlightRepository) ActiveBookings(ctx context.Context, id int64) (int, error) {
	var count int
	if _, err := r.q.QueryOne(ctx, &count,
		`SELECT COUNT(*) FROM bookings WHERE flight_id = ? AND status = ?`,
		id, domain.BookingStatusBooked); err != nil {
		return 0, fmt.Errorf("count bookings for flight %d: %w", id, err)
	}
	return count, nil
}

func (r *SQLFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	id, err := r.q.InsertReturningID(ctx,
		`INSERT INTO flights (flight_no, airline_id, from_airport_id, to_airport_id, departure_time, arrival_time, status, capacity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		f.FlightNo, f.AirlineID, f.FromAirportID, f.ToAirportID, f.DepartureTime, f.ArrivalTime, f.Status, f.Capacity)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	f.ID = id
	return nil
}

// Update rewrites the schedule, status and capacity of f.
func (r *SQLFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	n, err := r.q.Execute(ctx,
		`UPDATE flights SET flight_no = ?, departure_time = ?, arrival_time = ?, status = ?, capacity = ? WHERE id = ?`,
		f.FlightNo, f.DepartureTime, f.ArrivalTime, f.Status, f.Capacity, f.ID)
	if err != nil {
		return fmt.Errorf("update flight %d: %w", f.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLFlightRepository) Delete(ctx context.Context, id int64) error {
	return storage.RunInTransaction(ctx, r.q, func(tx storage.Querier) error {
		if _, err := tx.Execute(ctx, `DELETE FROM bookings WHERE flight_id = ?`, id); err != nil {
			return fmt.Errorf("delete bookings of flight %d: %w", id, err)
		}
		n, err := tx.Execute(ctx, `DELETE FROM flights WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete flight %d: %w", id, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Cancel marks the flight cancelled, cancels its active bookings and
// writes a CANCEL audit row for each of them.
func (r *SQLFlightRepository) Cancel(ctx context.Context, flightNo string) error {
	if storage.SupportsRoutines(r.q) {
		return r.q.CallProcedure(ctx, nil, "sp_cancel_flight", flightNo)
	}

	return storage.RunInTransaction(ctx, r.q, func(tx storage.Querier) error {
		var id int64
		found, err := tx.QueryOne(ctx, &id, `SELECT id FROM flights WHERE flight_no = ?`, flightNo)
		if err != nil {
			return fmt.Errorf("cancel flight %s: %w", flightNo, err)
		}
		if !found {
			return ErrNotFound
		}

		if _, err := tx.Execute(ctx, `UPDATE flights SET status = ? WHERE id = ?`, domain.FlightStatusCancelled, id); err != nil {
			return fmt.Errorf("cancel flight %s: %w", flightNo, err)
		}
		if _, err := tx.Execute(ctx,
			`INSERT INTO booking_audit (booking_id, operation, details)
			 SELECT id, ?, ? FROM bookings WHERE flight_id = ? AND status = ?`,
			domain.AuditOperationCancel, "flight "+flightNo+" cancelled", id, domain.BookingStatusBooked); err != nil {
			return fmt.Errorf("audit cancelled bookings of %s: %w", flightNo, err)
		}
		if _, err := tx.Execute(ctx,
			`UPDATE bookings SET status = ? WHERE flight_id = ? AND status = ?`,
			domain.BookingStatusCancelled, id, domain.BookingStatusBooked); err != nil {
			return fmt.Errorf("cancel bookings of %s: %w", flightNo, err)
		}
		return nil
	})
}

var _ FlightRepository = (*SQLFlightRepository)(nil)
