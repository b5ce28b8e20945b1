package flights

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

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	AvailableSeats(ctx context.Context, id int64) (int, error)
	CancelFlight(ctx context.Context, flightNo string) error
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo     repository.FlightRepository
	producer Producer
	topic    string
	log      *logrus.Entry
	now      func() time.Time
}

func NewFlightService(repo repository.FlightRepository, producer Producer, topic string, log *logrus.Entry) *FlightService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &FlightService{
		repo:     repo,
		producer: producer,
		topic:    topic,
		log:      log.WithField("component", "flight_service"),
		now:      time.Now,
	}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.FatalError("Failed to list flights", err)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFoundError("Flight not found")
	}
	if err != nil {
		return nil, domain.FatalError("Failed to load flight", err)
	}
	return f, nil
}

func (s *FlightService) AvailableSeats(ctx context.Context, id int64) (int, error) {
	seats, err := s.repo.AvailableSeats(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, domain.NotFoundError("Flight not found")
	}
	if err != nil {
		return 0, domain.FatalError("Failed to count available seats", err)
	}
	return seats, nil
}

// CancelFlight cancels the flight and every active booking on it.
func (s *FlightService) CancelFlight(ctx context.Context, flightNo string) error {
	flightNo = strings.TrimSpace(flightNo)
	if flightNo == "" {
		return domain.ValidationError("Missing field: flight_no")
	}

	f, err := s.repo.GetByNumber(ctx, flightNo)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundError("Flight not found")
	}
	if err != nil {
		return domain.FatalError("Failed to cancel flight", err)
	}
	if f.IsCancelled() {
		return domain.ConflictError("Flight is already cancelled")
	}

	if err := s.repo.Cancel(ctx, flightNo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("Flight not found")
		}
		switch storage.Classify(err) {
		case storage.ViolationFlightNotFound:
			return domain.NotFoundError("Flight not found")
		case storage.ViolationNone:
			s.log.WithError(err).WithField("flight_no", flightNo).Error("cancel flight failed")
			return domain.FatalError("Failed to cancel flight", err)
		default:
			return domain.ConflictError("Flight cannot be cancelled")
		}
	}

	s.log.WithField("flight_no", flightNo).Info("flight cancelled")
	if s.producer != nil && s.topic != "" {
		event := domain.BookingEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventFlightCancelled,
			FlightID:   f.ID,
			FlightNo:   f.FlightNo,
			Status:     string(domain.FlightStatusCancelled),
			OccurredAt: s.now().UTC(),
		}
		if err := s.producer.Publish(ctx, s.topic, event.ID, event); err != nil {
			s.log.WithError(err).WithField("flight_no", flightNo).Warn("failed to publish flight event")
		}
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
