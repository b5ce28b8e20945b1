package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
)

type Sender interface {
	Send(ctx context.Context, event domain.BookingEvent) error
}

// Notifier handles booking events delivered by a consumer: it notifies the
// passenger and appends a row to the booking audit trail.
type Notifier struct {
	sender Sender
	audit  repository.AuditRepository
	log    *logrus.Entry
}

func NewNotifier(sender Sender, audit repository.AuditRepository, log *logrus.Entry) *Notifier {
	return &Notifier{sender: sender, audit: audit, log: log.WithField("component", "notifier")}
}

// Handle processes one raw message. Messages that cannot be decoded are
// logged and dropped so they do not block the stream.
func (n *Notifier) Handle(ctx context.Context, data []byte) error {
	var event domain.BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		n.log.WithError(err).Warn("skipping undecodable event")
		return nil
	}

	log := n.log.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type})

	if err := n.sender.Send(ctx, event); err != nil {
		return fmt.Errorf("send notification for %s: %w", event.ID, err)
	}

	if event.BookingID == 0 {
		log.Debug("event has no booking, audit skipped")
		return nil
	}

	entry := &domain.AuditEntry{
		BookingID: event.BookingID,
		Operation: event.Type,
		Details:   Summary(event),
	}
	if err := n.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit for booking %d: %w", event.BookingID, err)
	}

	log.WithField("audit_id", entry.ID).Info("event processed")
	return nil
}

func Summary(event domain.BookingEvent) string {
	switch event.Type {
	case domain.EventBookingCreated:
		return fmt.Sprintf("Booking created for passenger %d on flight %s seat %s (%s)",
			event.PassengerID, event.FlightNo, event.SeatNo, event.Method)
	case domain.EventBookingCancelled, domain.EventBookingReactivated:
		return fmt.Sprintf("Booking status changed to %s", event.Status)
	default:
		return event.Type
	}
}
