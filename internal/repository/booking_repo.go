package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/storage"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingDetails, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error)
	SeatTaken(ctx context.Context, flightID int64, seatNo string) (bool, error)
	CountActive(ctx context.Context, flightID int64) (int, error)
	// Create inserts an active booking dated today and sets b.ID.
	Create(ctx context.Context, b *domain.Booking) error
	// CreateWithProcedure runs sp_create_booking, which inserts the
	// passenger and the booking and re-checks seat and capacity.
	CreateWithProcedure(ctx context.Context, p domain.Passenger, flightNo, seatNo string) (int64, error)
	LatestForEmail(ctx context.Context, email string) (*domain.BookingReceipt, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	UpdateSeat(ctx context.Context, id int64, seatNo string) error
	Delete(ctx context.Context, id int64) error
}

type SQLBookingRepository struct {
	q storage.Querier
}

func NewBookingRepository(q storage.Querier) BookingRepository {
	return &SQLBookingRepository{q: q}
}

const bookingDetailsQuery = `
	SELECT b.id, b.booking_date, b.seat_no, b.status, b.booking_time, b.passenger_id, b.flight_id,
	       p.first_name, p.last_name, p.email, f.flight_no, f.status AS flight_status
	FROM bookings b
	JOIN passengers p ON b.passenger_id = p.id
	JOIN flights f ON b.flight_id = f.id`

func (r *SQLBookingRepository) GetByID(ctx context.Context, id int64) (*domain.BookingDetails, error) {
	var b domain.BookingDetails
	found, err := r.q.QueryOne(ctx, &b, bookingDetailsQuery+` WHERE b.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *SQLBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, filter.Status)
	}
	if filter.PassengerID != 0 {
		conds = append(conds, "b.passenger_id = ?")
		args = append(args, filter.PassengerID)
	}
	if filter.FlightID != 0 {
		conds = append(conds, "b.flight_id = ?")
		args = append(args, filter.FlightID)
	}

	query := bookingDetailsQuery
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.booking_date DESC, b.booking_time DESC"

	bookings := make([]domain.BookingDetails, 0)
	if err := r.q.Query(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (r *SQLBookingRepository) SeatTaken(ctx context.Context, flightID int64, seatNo string) (bool, error) {
	var id int64
	found, err := r.q.QueryOne(ctx, &id,
		`SELECT id FROM bookings WHERE flight_id = ? AND seat_no = ? AND status = ?`,
		flightID, seatNo, domain.BookingStatusBooked)
	if err != nil {
		return false, fmt.Errorf("check seat %s: %w", seatNo, err)
	}
	return found, nil
}

func (r *SQLBookingRepository) CountActive(ctx context.Context, flightID int64) (int, error) {
	var count int
	if _, err := r.q.QueryOne(ctx, &count,
		`SELECT COUNT(*) FROM bookings WHERE flight_id = ? AND status = ?`,
		flightID, domain.BookingStatusBooked); err != nil {
		return 0, fmt.Errorf("count bookings for flight %d: %w", flightID, err)
	}
	return count, nil
}

func (r *SQLBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	id, err := r.q.InsertReturningID(ctx,
		`INSERT INTO bookings (booking_date, seat_no, passenger_id, flight_id, status, booking_time)
		 VALUES (CURRENT_DATE, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id`,
		b.SeatNo, b.PassengerID, b.FlightID, domain.BookingStatusBooked)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = id
	b.Status = domain.BookingStatusBooked
	return nil
}

func (r *SQLBookingRepository) CreateWithProcedure(ctx context.Context, p domain.Passenger, flightNo, seatNo string) (int64, error) {
	var out []struct {
		BookingID sql.NullInt64 `db:"p_booking_id"`
	}
	if err := r.q.CallProcedure(ctx, &out, "sp_create_booking",
		p.FirstName, p.LastName, p.Email, p.Phone, flightNo, seatNo, nil); err != nil {
		return 0, fmt.Errorf("sp_create_booking: %w", err)
	}
	if len(out) == 0 || !out[0].BookingID.Valid {
		return 0, nil
	}
	return out[0].BookingID.Int64, nil
}

func (r *SQLBookingRepository) LatestForEmail(ctx context.Context, email string) (*domain.BookingReceipt, error) {
	var receipt domain.BookingReceipt
	found, err := r.q.QueryOne(ctx, &receipt, `
		SELECT b.id AS booking_id, b.passenger_id, p.first_name, p.last_name, b.status
		FROM bookings b
		JOIN passengers p ON b.passenger_id = p.id
		WHERE p.email = ?
		ORDER BY b.id DESC
		LIMIT 1`, email)
	if err != nil {
		return nil, fmt.Errorf("read back booking for %s: %w", email, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &receipt, nil
}

func (r *SQLBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	n, err := r.q.Execute(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update booking %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLBookingRepository) UpdateSeat(ctx context.Context, id int64, seatNo string) error {
	n, err := r.q.Execute(ctx, `UPDATE bookings SET seat_no = ? WHERE id = ?`, seatNo, id)
	if err != nil {
		return fmt.Errorf("update seat of booking %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLBookingRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.q.Execute(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ BookingRepository = (*SQLBookingRepository)(nil)
