package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
)

const defaultCapacity = 180

const msgFlightNumberTaken = "Flight number already exists"

// Layouts accepted for departure_time and arrival_time.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

type CreateFlightInput struct {
	FlightNo      string              `json:"flight_no"`
	AirlineID     int64               `json:"airline_id"`
	FromAirportID int64               `json:"from_airport_id"`
	ToAirportID   int64               `json:"to_airport_id"`
	DepartureTime string              `json:"departure_time"`
	ArrivalTime   string              `json:"arrival_time"`
	Status        domain.FlightStatus `json:"status"`
	Capacity      int                 `json:"capacity"`
}

// UpdateFlightInput carries the fields to change. Nil fields are left as they are.
type UpdateFlightInput struct {
	FlightNo      *string              `json:"flight_no"`
	DepartureTime *string              `json:"departure_time"`
	ArrivalTime   *string              `json:"arrival_time"`
	Status        *domain.FlightStatus `json:"status"`
	Capacity      *int                 `json:"capacity"`
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.ValidationError("Invalid date format")
}

func validStatus(s domain.FlightStatus) bool {
	switch s {
	case domain.FlightStatusScheduled, domain.FlightStatusDelayed, domain.FlightStatusCancelled, domain.FlightStatusCompleted:
		return true
	}
	return false
}

func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	f := &domain.Flight{
		FlightNo:      strings.ToUpper(strings.TrimSpace(input.FlightNo)),
		AirlineID:     input.AirlineID,
		FromAirportID: input.FromAirportID,
		ToAirportID:   input.ToAirportID,
		Status:        input.Status,
		Capacity:      input.Capacity,
	}
	switch {
	case f.FlightNo == "":
		return nil, domain.ValidationError("Missing field: flight_no")
	case strings.TrimSpace(input.DepartureTime) == "":
		return nil, domain.ValidationError("Missing field: departure_time")
	case strings.TrimSpace(input.ArrivalTime) == "":
		return nil, domain.ValidationError("Missing field: arrival_time")
	case f.AirlineID <= 0:
		return nil, domain.ValidationError("Missing field: airline_id")
	case f.FromAirportID <= 0:
		return nil, domain.ValidationError("Missing field: from_airport_id")
	case f.ToAirportID <= 0:
		return nil, domain.ValidationError("Missing field: to_airport_id")
	}

	var err error
	if f.DepartureTime, err = parseTime(input.DepartureTime); err != nil {
		return nil, err
	}
	if f.ArrivalTime, err = parseTime(input.ArrivalTime); err != nil {
		return nil, err
	}
	if !f.DepartureTime.After(s.now()) {
		return nil, domain.ValidationError("Departure time must be in the future")
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return nil, domain.ValidationError("Arrival time must be after departure time")
	}

	if f.Status == "" {
		f.Status = domain.FlightStatusScheduled
	}
	if !validStatus(f.Status) || f.IsCancelled() {
		return nil, domain.ValidationError("Invalid flight status")
	}
	if input.Capacity == 0 {
		f.Capacity = defaultCapacity
	}
	if f.Capacity < 1 {
		return nil, domain.ValidationError("Capacity must be at least 1")
	}

	taken, err := s.repo.NumberTaken(ctx, f.FlightNo, 0)
	if err != nil {
		return nil, domain.FatalError("Failed to create flight", err)
	}
	if taken {
		return nil, domain.ConflictError(msgFlightNumberTaken)
	}

	if err := s.repo.Create(ctx, f); err != nil {
		switch storage.Classify(err) {
		case storage.ViolationFlightNumberTaken:
			return nil, domain.ConflictError(msgFlightNumberTaken)
		case storage.ViolationForeignKey:
			return nil, domain.ValidationError("Invalid airline or airport")
		}
		s.log.WithError(err).WithField("flight_no", f.FlightNo).Error("flight insert failed")
		return nil, domain.FatalError("Failed to create flight", err)
	}

	s.log.WithFields(logrus.Fields{"flight_id": f.ID, "flight_no": f.FlightNo}).Info("flight created")
	return f, nil
}

// UpdateFlight changes schedule, status or capacity. Cancelling goes through
// CancelFlight so the bookings follow.
func (s *FlightService) UpdateFlight(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error) {
	if input == (UpdateFlightInput{}) {
		return nil, domain.ValidationError("No fields to update")
	}

	f, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FlightNo != nil {
		f.FlightNo = strings.ToUpper(strings.TrimSpace(*input.FlightNo))
		if f.FlightNo == "" {
			return nil, domain.ValidationError("Flight number cannot be empty")
		}
		taken, err := s.repo.NumberTaken(ctx, f.FlightNo, id)
		if err != nil {
			return nil, domain.FatalError("Failed to update flight", err)
		}
		if taken {
			return nil, domain.ConflictError(msgFlightNumberTaken)
		}
	}
	if input.DepartureTime != nil {
		if f.DepartureTime, err = parseTime(*input.DepartureTime); err != nil {
			return nil, err
		}
	}
	if input.ArrivalTime != nil {
		if f.ArrivalTime, err = parseTime(*input.ArrivalTime); err != nil {
			return nil, err
		}
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return nil, domain.ValidationError("Arrival time must be after departure time")
	}

	if input.Status != nil && *input.Status != f.Status {
		if !validStatus(*input.Status) {
			return nil, domain.ValidationError("Invalid flight status")
		}
		if *input.Status == domain.FlightStatusCancelled {
			return nil, domain.ValidationError("Use flight cancellation to cancel a flight")
		}
		f.Status = *input.Status
	}

	if input.Capacity != nil {
		if *input.Capacity < 1 {
			return nil, domain.ValidationError("Capacity must be at least 1")
		}
		active, err := s.repo.ActiveBookings(ctx, id)
		if err != nil {
			return nil, domain.FatalError("Failed to update flight", err)
		}
		if *input.Capacity < active {
			return nil, domain.ConflictError(fmt.Sprintf("Capacity cannot be lower than the %d active bookings", active))
		}
		f.Capacity = *input.Capacity
	}

	if err := s.repo.Update(ctx, f); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("Flight not found")
		}
		if storage.Classify(err) == storage.ViolationFlightNumberTaken {
			return nil, domain.ConflictError(msgFlightNumberTaken)
		}
		s.log.WithError(err).WithField("flight_id", id).Error("flight update failed")
		return nil, domain.FatalError("Failed to update flight", err)
	}

	s.log.WithFields(logrus.Fields{"flight_id": id, "flight_no": f.FlightNo}).Info("flight updated")
	return f, nil
}

// DeleteFlight removes a flight that has no active bookings.
func (s *FlightService) DeleteFlight(ctx context.Context, id int64) error {
	active, err := s.repo.ActiveBookings(ctx, id)
	if err != nil {
		return domain.FatalError("Failed to delete flight", err)
	}
	if active > 0 {
		return domain.ConflictError(fmt.Sprintf("Cannot delete flight with %d active bookings. Cancel the flight first.", active))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("Flight not found")
		}
		s.log.WithError(err).WithField("flight_id", id).Error("flight delete failed")
		return domain.FatalError("Failed to delete flight", err)
	}
	s.log.WithField("flight_id", id).Info("flight deleted")
	return nil
}
