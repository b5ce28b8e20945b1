package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/storage"
)

type PassengerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	// EmailTakenByOther and PhoneTakenByOther ignore the passenger with id.
	EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error)
	PhoneTakenByOther(ctx context.Context, phone string, id int64) (bool, error)
	Create(ctx context.Context, p *domain.Passenger) error
	Update(ctx context.Context, p *domain.Passenger) error
	// Delete removes the passenger together with their bookings.
	Delete(ctx context.Context, id int64) error
	BookingCount(ctx context.Context, id int64) (int, error)
}

type SQLPassengerRepository struct {
	q storage.Querier
}

func NewPassengerRepository(q storage.Querier) PassengerRepository {
	return &SQLPassengerRepository{q: q}
}

func (r *SQLPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	var p domain.Passenger
	found, err := r.q.QueryOne(ctx, &p, `SELECT id, first_name, last_name, email, phone FROM passengers WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get passenger %d: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *SQLPassengerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT id FROM passengers WHERE email = ?`, email)
}

func (r *SQLPassengerRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT id FROM passengers WHERE phone = ?`, phone)
}

func (r *SQLPassengerRepository) EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error) {
	return r.exists(ctx, `SELECT id FROM passengers WHERE email = ? AND id <> ?`, email, id)
}

func (r *SQLPassengerRepository) PhoneTakenByOther(ctx context.Context, phone string, id int64) (bool, error) {
	return r.exists(ctx, `SELECT id FROM passengers WHERE phone = ? AND id <> ?`, phone, id)
}

func (r *SQLPassengerRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var id int64
	found, err := r.q.QueryOne(ctx, &id, query, args...)
	if err != nil {
		return false, fmt.Errorf("lookup passenger: %w", err)
	}
	return found, nil
}

// Create inserts p and sets p.ID.
func (r *SQLPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	id, err := r.q.InsertReturningID(ctx,
		`INSERT INTO passengers (first_name, last_name, email, phone) VALUES (?, ?, ?, ?) RETURNING id`,
		p.FirstName, p.LastName, p.Email, p.Phone)
	if err != nil {
		return fmt.Errorf("insert passenger: %w", err)
	}
	p.ID = id
	return nil
}

func (r *SQLPassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	n, err := r.q.Execute(ctx,
		`UPDATE passengers SET first_name = ?, last_name = ?, email = ?, phone = ? WHERE id = ?`,
		p.FirstName, p.LastName, p.Email, p.Phone, p.ID)
	if err != nil {
		return fmt.Errorf("update passenger %d: %w", p.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLPassengerRepository) Delete(ctx context.Context, id int64) error {
	return storage.RunInTransaction(ctx, r.q, func(tx storage.Querier) error {
		if _, err := tx.Execute(ctx, `DELETE FROM bookings WHERE passenger_id = ?`, id); err != nil {
			return fmt.Errorf("delete bookings of passenger %d: %w", id, err)
		}
		n, err := tx.Execute(ctx, `DELETE FROM passengers WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete passenger %d: %w", id, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BookingCount returns the number of active bookings held by the passenger.
func (r *SQLPassengerRepository) BookingCount(ctx context.Context, id int64) (int, error) {
	var count sql.NullInt64
	if storage.SupportsRoutines(r.q) {
		if err := r.q.CallFunction(ctx, &count, "fn_passenger_booking_count", id); err != nil {
			return 0, fmt.Errorf("booking count for passenger %d: %w", id, err)
		}
		return int(count.Int64), nil
	}
	if _, err := r.q.QueryOne(ctx, &count,
		`SELECT COUNT(*) FROM bookings WHERE passenger_id = ? AND status = ?`,
		id, domain.BookingStatusBooked); err != nil {
		return 0, fmt.Errorf("booking count for passenger %d: %w", id, err)
	}
	return int(count.Int64), nil
}

var _ PassengerRepository = (*SQLPassengerRepository)(nil)
