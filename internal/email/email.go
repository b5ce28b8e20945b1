package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
)

// Sender writes passenger notifications to the log. There is no mail relay
// behind it yet.
type Sender struct {
	log *logrus.Entry
}

func NewSender(log *logrus.Entry) *Sender {
	return &Sender{log: log.WithField("component", "email")}
}

func (s *Sender) Send(_ context.Context, event domain.BookingEvent) error {
	subject := Subject(event)
	if subject == "" {
		return nil
	}
	if event.Email == "" {
		s.log.WithField("event_id", event.ID).Debug("no recipient, skipping")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"to":         event.Email,
		"subject":    subject,
		"booking_id": event.BookingID,
		"flight_no":  event.FlightNo,
		"seat_no":    event.SeatNo,
	}).Info("email sent")
	return nil
}

// Subject returns the mail subject for event, or "" for events that do not
// notify a passenger.
func Subject(event domain.BookingEvent) string {
	switch event.Type {
	case domain.EventBookingCreated:
		return fmt.Sprintf("Booking #%d confirmed: flight %s seat %s", event.BookingID, event.FlightNo, event.SeatNo)
	case domain.EventBookingCancelled:
		return fmt.Sprintf("Booking #%d cancelled", event.BookingID)
	case domain.EventBookingReactivated:
		return fmt.Sprintf("Booking #%d is active again", event.BookingID)
	default:
		return ""
	}
}
