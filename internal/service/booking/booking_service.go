package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
)

type BookingUseCase interface {
	CreatePassengerWithBooking(ctx context.Context, input CreatePassengerBookingInput) (*CreatePassengerBookingResult, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.BookingDetails, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error)
	ChangeBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.BookingDetails, error)
	CancelBooking(ctx context.Context, id int64) (*domain.BookingDetails, error)
	UpdateBooking(ctx context.Context, id int64, input UpdateBookingInput) (*domain.BookingDetails, error)
	DeleteBooking(ctx context.Context, id int64) error
	BookingHistory(ctx context.Context, id int64) ([]domain.AuditEntry, error)
}

// Store is the storage surface the service needs: repositories for reads
// and single writes, plus transactions for multi-statement writes.
type Store interface {
	repository.Repositories
	repository.Transactor
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	store              Store
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	useProcedure       bool
	log                *logrus.Entry
	now                func() time.Time
}

type CreateBookingInput struct {
	PassengerID int64  `json:"passenger_id"`
	FlightID    int64  `json:"flight_id"`
	SeatNo      string `json:"seat_no"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithStoredProcedure toggles the sp_create_booking path. It is on by default.
func WithStoredProcedure(enabled bool) BookingServiceOption {
	return func(s *BookingService) {
		s.useProcedure = enabled
	}
}

func WithLogger(log *logrus.Entry) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(store Store, producer Producer, bookingTopic string, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:        store,
		producer:     producer,
		bookingTopic: bookingTopic,
		useProcedure: true,
		log:          logrus.NewEntry(logrus.StandardLogger()),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.log = service.log.WithField("component", "booking_service")
	return service
}

// CreateBooking books a seat for an existing passenger.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	seat := strings.ToUpper(strings.TrimSpace(input.SeatNo))
	switch {
	case input.PassengerID <= 0:
		return nil, domain.ValidationError("Missing field: passenger_id")
	case input.FlightID <= 0:
		return nil, domain.ValidationError("Missing field: flight_id")
	case seat == "":
		return nil, domain.ValidationError("Missing field: seat_no")
	}

	flight, err := s.store.Flights().GetByID(ctx, input.FlightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ValidationError("Selected flight does not exist")
	}
	if err != nil {
		return nil, domain.FatalError("Booking creation failed", err)
	}
	if flight.IsCancelled() {
		return nil, domain.ConflictError(msgFlightCancelled)
	}

	b := &domain.Booking{PassengerID: input.PassengerID, FlightID: flight.ID, SeatNo: seat}
	if err := s.store.Bookings().Create(ctx, b); err != nil {
		v := storage.Classify(err)
		if v == storage.ViolationForeignKey {
			return nil, domain.ValidationError("Invalid passenger selected")
		}
		if derr := violationError(v); derr != nil {
			return nil, derr
		}
		s.log.WithError(err).WithField("flight_id", flight.ID).Error("booking insert failed")
		return nil, domain.FatalError("Booking creation failed", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   b.ID,
		"passenger_id": b.PassengerID,
		"flight_no":    flight.FlightNo,
		"seat_no":      b.SeatNo,
	}).Info("booking created")

	s.publish(ctx, domain.BookingEvent{
		Type:        domain.EventBookingCreated,
		BookingID:   b.ID,
		FlightID:    flight.ID,
		FlightNo:    flight.FlightNo,
		SeatNo:      b.SeatNo,
		PassengerID: b.PassengerID,
		Status:      string(b.Status),
		Method:      string(domain.CreationMethodManual),
	})
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.BookingDetails, error) {
	b, err := s.store.Bookings().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFoundError(msgBookingNotFound)
	}
	if err != nil {
		return nil, domain.FatalError("Failed to load booking", err)
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ValidationError(msgInvalidStatus)
	}
	bookings, err := s.store.Bookings().List(ctx, filter)
	if err != nil {
		return nil, domain.FatalError("Failed to list bookings", err)
	}
	return bookings, nil
}

// ChangeBookingStatus moves a booking between Booked and Cancelled.
// Setting the current status again returns the booking unchanged.
func (s *BookingService) ChangeBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.BookingDetails, error) {
	if !status.Valid() {
		return nil, domain.ValidationError(msgInvalidStatus)
	}

	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if status == domain.BookingStatusBooked && current.FlightStatus == domain.FlightStatusCancelled {
		return nil, domain.ConflictError(msgReactivateCancelled)
	}

	if err := s.store.Bookings().UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError(msgBookingNotFound)
		}
		if derr := violationError(storage.Classify(err)); derr != nil {
			return nil, derr
		}
		return nil, domain.FatalError("Failed to update booking status", err)
	}
	current.Status = status

	s.log.WithFields(logrus.Fields{"booking_id": id, "status": status}).Info("booking status changed")
	s.publishStatusChange(ctx, current)
	return current, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.BookingDetails, error) {
	return s.ChangeBookingStatus(ctx, id, domain.BookingStatusCancelled)
}

func (s *BookingService) publishStatusChange(ctx context.Context, b *domain.BookingDetails) {
	eventType := domain.EventBookingCancelled
	if b.Status == domain.BookingStatusBooked {
		eventType = domain.EventBookingReactivated
	}
	s.publish(ctx, domain.BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		FlightID:    b.FlightID,
		FlightNo:    b.FlightNo,
		SeatNo:      b.SeatNo,
		PassengerID: b.PassengerID,
		Email:       b.Email,
		Status:      string(b.Status),
	})
}

// publish sends event to the booking topic and, when configured, to the
// notifications topic. Failures are logged only.
func (s *BookingService) publish(ctx context.Context, event domain.BookingEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.now().UTC()

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, event.ID, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"topic":      topic,
				"event":      event.Type,
				"booking_id": event.BookingID,
			}).Warn("failed to publish booking event")
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
