package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
)

const (
	msgNewSeatTaken        = "New seat is already booked on this flight"
	msgReactivateCancelled = "Cannot re-activate a booking on a cancelled flight"
	msgBookingNotFound     = "Booking not found"
)

// UpdateBookingInput carries the fields to change. Nil fields are left as they are.
type UpdateBookingInput struct {
	SeatNo *string               `json:"seat_no"`
	Status *domain.BookingStatus `json:"status"`
}

// UpdateBooking changes the seat and/or status of a booking and records an
// UPDATE audit entry in the same transaction.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, input UpdateBookingInput) (*domain.BookingDetails, error) {
	if input.SeatNo == nil && input.Status == nil {
		return nil, domain.ValidationError("No valid fields provided to update")
	}

	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	seat := current.SeatNo
	if input.SeatNo != nil {
		seat = strings.ToUpper(strings.TrimSpace(*input.SeatNo))
		if seat == "" {
			return nil, domain.ValidationError("Seat number cannot be empty")
		}
	}
	status := current.Status
	if input.Status != nil {
		status = *input.Status
		if !status.Valid() {
			return nil, domain.ValidationError(msgInvalidStatus)
		}
	}

	seatChanged := seat != current.SeatNo
	statusChanged := status != current.Status
	if !seatChanged && !statusChanged {
		return current, nil
	}
	if statusChanged && status == domain.BookingStatusBooked && current.FlightStatus == domain.FlightStatusCancelled {
		return nil, domain.ConflictError(msgReactivateCancelled)
	}

	if seatChanged && status == domain.BookingStatusBooked {
		taken, err := s.store.Bookings().SeatTaken(ctx, current.FlightID, seat)
		if err != nil {
			return nil, domain.FatalError("Failed to update booking", err)
		}
		if taken {
			return nil, domain.ConflictError(msgNewSeatTaken)
		}
	}

	var changes []string
	if seatChanged {
		changes = append(changes, "seat_no: "+seat)
	}
	if statusChanged {
		changes = append(changes, "status: "+string(status))
	}

	err = s.store.WithTransaction(ctx, func(tx repository.Repositories) error {
		if seatChanged {
			if err := tx.Bookings().UpdateSeat(ctx, id, seat); err != nil {
				return err
			}
		}
		if statusChanged {
			if err := tx.Bookings().UpdateStatus(ctx, id, status); err != nil {
				return err
			}
		}
		return tx.Audit().Record(ctx, &domain.AuditEntry{
			BookingID: id,
			Operation: domain.AuditOperationUpdate,
			Details:   fmt.Sprintf("Updated booking %d: %s", id, strings.Join(changes, ", ")),
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError(msgBookingNotFound)
		}
		v := storage.Classify(err)
		if v == storage.ViolationSeatTaken && seatChanged {
			return nil, domain.ConflictError(msgNewSeatTaken)
		}
		if derr := violationError(v); derr != nil {
			return nil, derr
		}
		s.log.WithError(err).WithField("booking_id", id).Error("booking update failed")
		return nil, domain.FatalError("Failed to update booking", err)
	}

	current.SeatNo = seat
	current.Status = status
	s.log.WithFields(logrus.Fields{"booking_id": id, "seat_no": seat, "status": status}).Info("booking updated")
	if statusChanged {
		s.publishStatusChange(ctx, current)
	}
	return current, nil
}

// DeleteBooking removes a booking and leaves a DELETE audit entry behind.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	err := s.store.WithTransaction(ctx, func(tx repository.Repositories) error {
		b, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Audit().Record(ctx, &domain.AuditEntry{
			BookingID: id,
			Operation: domain.AuditOperationDelete,
			Details:   fmt.Sprintf("Deleted booking - Passenger: %d, Flight: %d, Seat: %s", b.PassengerID, b.FlightID, b.SeatNo),
		}); err != nil {
			return err
		}
		return tx.Bookings().Delete(ctx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundError(msgBookingNotFound)
	}
	if err != nil {
		s.log.WithError(err).WithField("booking_id", id).Error("booking delete failed")
		return domain.FatalError("Failed to delete booking", err)
	}
	s.log.WithField("booking_id", id).Info("booking deleted")
	return nil
}

// BookingHistory lists the audit entries of a booking, oldest first.
func (s *BookingService) BookingHistory(ctx context.Context, id int64) ([]domain.AuditEntry, error) {
	entries, err := s.store.Audit().ListForBooking(ctx, id)
	if err != nil {
		return nil, domain.FatalError("Failed to load booking history", err)
	}
	return entries, nil
}
