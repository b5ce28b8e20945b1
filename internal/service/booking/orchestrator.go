package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
)

const (
	msgFlightNotFound  = "Flight not found"
	msgFlightCancelled = "Cannot book a cancelled flight"
	msgSeatTaken       = "Seat already booked on this flight"
	msgEmailTaken      = "Email already exists"
	msgPhoneTaken      = "Phone number already exists"
	msgFlightFull      = "No seats available on this flight"
	msgInvalidStatus   = "Invalid status. Must be 'Booked' or 'Cancelled'"
	msgCreateFailed    = "Booking creation failed"
)

type CreatePassengerBookingInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FlightNo  string `json:"flight_no"`
	SeatNo    string `json:"seat_no"`
}

type CreatePassengerBookingResult struct {
	BookingID   int64                 `json:"booking_id"`
	PassengerID int64                 `json:"passenger_id,omitempty"`
	FirstName   string                `json:"first_name"`
	LastName    string                `json:"last_name"`
	Method      domain.CreationMethod `json:"method"`
}

// CreatePassengerWithBooking registers a new passenger together with a
// booking on an existing flight. Either both rows are stored or neither.
func (s *BookingService) CreatePassengerWithBooking(ctx context.Context, input CreatePassengerBookingInput) (*CreatePassengerBookingResult, error) {
	req, err := normalize(input)
	if err != nil {
		return nil, err
	}

	flight, err := s.checkAvailability(ctx, req)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"flight_no": flight.FlightNo,
		"seat_no":   req.SeatNo,
		"email":     req.Email,
	})

	var result *CreatePassengerBookingResult
	if s.useProcedure {
		result, err = s.createWithProcedure(ctx, req)
		if err != nil {
			if derr := violationError(storage.Classify(err)); derr != nil {
				log.WithError(err).Info("stored procedure rejected booking")
				return nil, derr
			}
			log.WithError(err).Warn("stored procedure failed, falling back to manual insert")
		}
	}

	if result == nil {
		result, err = s.createManually(ctx, req, flight)
		if err != nil {
			if derr := violationError(storage.Classify(err)); derr != nil {
				log.WithError(err).Info("storage rejected booking")
				return nil, derr
			}
			log.WithError(err).Error("manual booking insert failed")
			return nil, domain.FatalError(msgCreateFailed, err)
		}
	}

	log.WithFields(logrus.Fields{
		"booking_id":   result.BookingID,
		"passenger_id": result.PassengerID,
		"method":       result.Method,
	}).Info("passenger and booking created")

	s.publish(ctx, domain.BookingEvent{
		Type:        domain.EventBookingCreated,
		BookingID:   result.BookingID,
		FlightID:    flight.ID,
		FlightNo:    flight.FlightNo,
		SeatNo:      req.SeatNo,
		PassengerID: result.PassengerID,
		Email:       req.Email,
		Status:      string(domain.BookingStatusBooked),
		Method:      string(result.Method),
	})
	return result, nil
}

// checkAvailability runs the read-only checks that precede any write.
func (s *BookingService) checkAvailability(ctx context.Context, req CreatePassengerBookingInput) (*domain.Flight, error) {
	flight, err := s.store.Flights().GetByNumber(ctx, req.FlightNo)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFoundError(msgFlightNotFound)
	}
	if err != nil {
		return nil, domain.FatalError(msgCreateFailed, err)
	}
	if flight.IsCancelled() {
		return nil, domain.ConflictError(msgFlightCancelled)
	}

	taken, err := s.store.Bookings().SeatTaken(ctx, flight.ID, req.SeatNo)
	if err != nil {
		return nil, domain.FatalError(msgCreateFailed, err)
	}
	if taken {
		return nil, domain.ConflictError(msgSeatTaken)
	}

	exists, err := s.store.Passengers().EmailExists(ctx, req.Email)
	if err != nil {
		return nil, domain.FatalError(msgCreateFailed, err)
	}
	if exists {
		return nil, domain.ConflictError(msgEmailTaken)
	}

	exists, err = s.store.Passengers().PhoneExists(ctx, req.Phone)
	if err != nil {
		return nil, domain.FatalError(msgCreateFailed, err)
	}
	if exists {
		return nil, domain.ConflictError(msgPhoneTaken)
	}

	active, err := s.store.Bookings().CountActive(ctx, flight.ID)
	if err != nil {
		return nil, domain.FatalError(msgCreateFailed, err)
	}
	if active >= flight.Capacity {
		return nil, domain.ConflictError(msgFlightFull)
	}
	return flight, nil
}

func (s *BookingService) createWithProcedure(ctx context.Context, req CreatePassengerBookingInput) (*CreatePassengerBookingResult, error) {
	var result *CreatePassengerBookingResult
	err := s.store.WithTransaction(ctx, func(tx repository.Repositories) error {
		p := domain.Passenger{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}
		if _, err := tx.Bookings().CreateWithProcedure(ctx, p, req.FlightNo, req.SeatNo); err != nil {
			return err
		}
		receipt, err := tx.Bookings().LatestForEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		result = &CreatePassengerBookingResult{
			BookingID:   receipt.BookingID,
			PassengerID: receipt.PassengerID,
			FirstName:   receipt.FirstName,
			LastName:    receipt.LastName,
			Method:      domain.CreationMethodStoredProcedure,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BookingService) createManually(ctx context.Context, req CreatePassengerBookingInput, flight *domain.Flight) (*CreatePassengerBookingResult, error) {
	var result *CreatePassengerBookingResult
	err := s.store.WithTransaction(ctx, func(tx repository.Repositories) error {
		p := &domain.Passenger{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}
		if err := tx.Passengers().Create(ctx, p); err != nil {
			return err
		}
		b := &domain.Booking{PassengerID: p.ID, FlightID: flight.ID, SeatNo: req.SeatNo}
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}
		result = &CreatePassengerBookingResult{
			BookingID:   b.ID,
			PassengerID: p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Method:      domain.CreationMethodManual,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("manual insert: %w", err)
	}
	return result, nil
}

// violationError maps a storage rule violation to the error reported by
// the matching pre-check. It returns nil for violations with no such check.
func violationError(v storage.Violation) *domain.Error {
	switch v {
	case storage.ViolationSeatTaken:
		return domain.ConflictError(msgSeatTaken)
	case storage.ViolationFlightFull:
		return domain.ConflictError(msgFlightFull)
	case storage.ViolationFlightCancelled:
		return domain.ConflictError(msgFlightCancelled)
	case storage.ViolationFlightNotFound:
		return domain.NotFoundError(msgFlightNotFound)
	case storage.ViolationEmailTaken:
		return domain.ConflictError(msgEmailTaken)
	case storage.ViolationPhoneTaken:
		return domain.ConflictError(msgPhoneTaken)
	default:
		return nil
	}
}
