package booking

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, flightNo string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) AvailableSeats(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) Cancel(ctx context.Context, flightNo string) error {
	args := m.Called(ctx, flightNo)
	return args.Error(0)
}

func (m *MockFlightRepository) NumberTaken(ctx context.Context, flightNo string, excludeID int64) (bool, error) {
	args := m.Called(ctx, flightNo, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightRepository) ActiveBookings(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type MockPassengerRepository struct {
	mock.Mock
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockPassengerRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPassengerRepository) BookingCount(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockPassengerRepository) EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error) {
	args := m.Called(ctx, email, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPassengerRepository) PhoneTakenByOther(ctx context.Context, phone string, id int64) (bool, error) {
	args := m.Called(ctx, phone, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPassengerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.BookingDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetails), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BookingDetails), args.Error(1)
}

func (m *MockBookingRepository) SeatTaken(ctx context.Context, flightID int64, seatNo string) (bool, error) {
	args := m.Called(ctx, flightID, seatNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CountActive(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) CreateWithProcedure(ctx context.Context, p domain.Passenger, flightNo, seatNo string) (int64, error) {
	args := m.Called(ctx, p, flightNo, seatNo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) LatestForEmail(ctx context.Context, email string) (*domain.BookingReceipt, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingReceipt), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateSeat(ctx context.Context, id int64, seatNo string) error {
	args := m.Called(ctx, id, seatNo)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListForBooking(ctx context.Context, bookingID int64) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

// MockStore hands out the repository mocks and runs transaction bodies
// against the same mocks.
type MockStore struct {
	mock.Mock
	flights    *MockFlightRepository
	passengers *MockPassengerRepository
	bookings   *MockBookingRepository
	audit      *MockAuditRepository
}

func newMockStore() *MockStore {
	return &MockStore{
		flights:    &MockFlightRepository{},
		passengers: &MockPassengerRepository{},
		bookings:   &MockBookingRepository{},
		audit:      &MockAuditRepository{},
	}
}

func (m *MockStore) Flights() repository.FlightRepository       { return m.flights }
func (m *MockStore) Passengers() repository.PassengerRepository { return m.passengers }
func (m *MockStore) Bookings() repository.BookingRepository     { return m.bookings }
func (m *MockStore) Audit() repository.AuditRepository          { return m.audit }

func (m *MockStore) WithTransaction(ctx context.Context, fn func(tx repository.Repositories) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockStore) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.flights.AssertExpectations(t)
	m.passengers.AssertExpectations(t)
	m.bookings.AssertExpectations(t)
	m.audit.AssertExpectations(t)
}

// Untouched reports whether no storage method was invoked at all.
func (m *MockStore) Untouched() bool {
	return len(m.Calls) == 0 &&
		len(m.flights.Calls) == 0 &&
		len(m.passengers.Calls) == 0 &&
		len(m.bookings.Calls) == 0 &&
		len(m.audit.Calls) == 0
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
