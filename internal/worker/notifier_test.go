package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightops/internal/domain"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, event domain.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		entry.ID = 1
	}
	return args.Error(0)
}

func (m *MockAuditRepository) ListForBooking(ctx context.Context, bookingID int64) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func newTestNotifier() (*Notifier, *MockSender, *MockAuditRepository) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	sender := new(MockSender)
	audit := new(MockAuditRepository)
	return NewNotifier(sender, audit, logrus.NewEntry(log)), sender, audit
}

func encode(t *testing.T, event domain.BookingEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestNotifier_BookingCreated(t *testing.T) {
	notifier, sender, audit := newTestNotifier()
	ctx := context.Background()

	event := domain.BookingEvent{
		ID:          "evt-1",
		Type:        domain.EventBookingCreated,
		BookingID:   42,
		PassengerID: 7,
		FlightNo:    "AA100",
		SeatNo:      "12A",
		Email:       "jane@example.com",
		Method:      string(domain.CreationMethodManual),
	}

	sender.On("Send", ctx, mock.MatchedBy(func(e domain.BookingEvent) bool { return e.ID == "evt-1" })).Return(nil)
	audit.On("Record", ctx, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.BookingID == 42 &&
			e.Operation == domain.EventBookingCreated &&
			e.Details == "Booking created for passenger 7 on flight AA100 seat 12A (manual)"
	})).Return(nil)

	require.NoError(t, notifier.Handle(ctx, encode(t, event)))
	sender.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestNotifier_FlightEventSkipsAudit(t *testing.T) {
	notifier, sender, audit := newTestNotifier()
	ctx := context.Background()

	sender.On("Send", ctx, mock.Anything).Return(nil)

	require.NoError(t, notifier.Handle(ctx, encode(t, domain.BookingEvent{ID: "evt-2", Type: domain.EventFlightCancelled, FlightNo: "AA100"})))
	audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestNotifier_UndecodableMessage(t *testing.T) {
	notifier, sender, audit := newTestNotifier()

	require.NoError(t, notifier.Handle(context.Background(), []byte("{not json")))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestNotifier_Errors(t *testing.T) {
	ctx := context.Background()
	event := domain.BookingEvent{ID: "evt-3", Type: domain.EventBookingCancelled, BookingID: 5, Status: string(domain.BookingStatusCancelled)}

	t.Run("send fails", func(t *testing.T) {
		notifier, sender, audit := newTestNotifier()
		sender.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

		err := notifier.Handle(ctx, encode(t, event))
		assert.ErrorContains(t, err, "smtp down")
		audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("audit fails", func(t *testing.T) {
		notifier, sender, audit := newTestNotifier()
		sender.On("Send", ctx, mock.Anything).Return(nil)
		audit.On("Record", ctx, mock.Anything).Return(errors.New("db down"))

		err := notifier.Handle(ctx, encode(t, event))
		assert.ErrorContains(t, err, "record audit for booking 5")
	})
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Booking status changed to Booked",
		Summary(domain.BookingEvent{Type: domain.EventBookingReactivated, Status: "Booked"}))
	assert.Equal(t, domain.EventFlightCancelled, Summary(domain.BookingEvent{Type: domain.EventFlightCancelled}))
}
