package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
)

var scheduleNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newScheduleService(repo *MockFlightRepository) *FlightService {
	service := newService(repo, nil)
	service.now = func() time.Time { return scheduleNow }
	return service
}

func validFlightInput() CreateFlightInput {
	return CreateFlightInput{
		FlightNo:      " aa300 ",
		AirlineID:     1,
		FromAirportID: 1,
		ToAirportID:   2,
		DepartureTime: "2026-05-01T09:00:00Z",
		ArrivalTime:   "2026-05-01 11:30",
	}
}

func TestFlightService_CreateFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesDefaults", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)

		repo.On("NumberTaken", mock.Anything, "AA300", int64(0)).Return(false, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Flight) bool {
			return f.FlightNo == "AA300" &&
				f.Status == domain.FlightStatusScheduled &&
				f.Capacity == 180 &&
				f.ArrivalTime.Equal(time.Date(2026, 5, 1, 11, 30, 0, 0, time.UTC))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Flight).ID = 9
		}).Return(nil)

		f, err := service.CreateFlight(ctx, validFlightInput())
		require.NoError(t, err)
		assert.Equal(t, int64(9), f.ID)
		repo.AssertExpectations(t)
	})

	testCases := []struct {
		name     string
		mutate   func(in *CreateFlightInput)
		expected string
	}{
		{"missing number", func(in *CreateFlightInput) { in.FlightNo = " " }, "Missing field: flight_no"},
		{"missing airline", func(in *CreateFlightInput) { in.AirlineID = 0 }, "Missing field: airline_id"},
		{"bad date", func(in *CreateFlightInput) { in.DepartureTime = "tomorrow" }, "Invalid date format"},
		{"departure in past", func(in *CreateFlightInput) { in.DepartureTime = "2026-02-01T09:00:00Z" }, "Departure time must be in the future"},
		{"arrival before departure", func(in *CreateFlightInput) { in.ArrivalTime = "2026-05-01T08:00:00Z" }, "Arrival time must be after departure time"},
		{"capacity", func(in *CreateFlightInput) { in.Capacity = -1 }, "Capacity must be at least 1"},
		{"created cancelled", func(in *CreateFlightInput) { in.Status = domain.FlightStatusCancelled }, "Invalid flight status"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockFlightRepository{}
			service := newScheduleService(repo)

			in := validFlightInput()
			tc.mutate(&in)
			_, err := service.CreateFlight(ctx, in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Equal(t, tc.expected, domain.PublicMessage(err))
			assert.Empty(t, repo.Calls)
		})
	}

	t.Run("NumberTaken", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("NumberTaken", mock.Anything, "AA300", int64(0)).Return(true, nil)

		_, err := service.CreateFlight(ctx, validFlightInput())
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, "Flight number already exists", domain.PublicMessage(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownAirport", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("NumberTaken", mock.Anything, "AA300", int64(0)).Return(false, nil)
		repo.On("Create", mock.Anything, mock.Anything).
			Return(&pgconn.PgError{Code: "23503", ConstraintName: "flights_to_airport_id_fkey"})

		_, err := service.CreateFlight(ctx, validFlightInput())
		assert.Equal(t, "Invalid airline or airport", domain.PublicMessage(err))
	})
}

func TestFlightService_UpdateFlight(t *testing.T) {
	ctx := context.Background()
	intPtr := func(v int) *int { return &v }
	strPtr := func(v string) *string { return &v }

	current := func() *domain.Flight {
		return &domain.Flight{
			ID:            4,
			FlightNo:      "SU1234",
			DepartureTime: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			Status:        domain.FlightStatusScheduled,
			Capacity:      180,
		}
	}

	t.Run("Reschedules", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		delayed := domain.FlightStatusDelayed

		repo.On("GetByID", mock.Anything, int64(4)).Return(current(), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(f *domain.Flight) bool {
			return f.Status == domain.FlightStatusDelayed && f.ArrivalTime.Hour() == 14
		})).Return(nil)

		f, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{ArrivalTime: strPtr("2026-04-01T14:00:00Z"), Status: &delayed})
		require.NoError(t, err)
		assert.Equal(t, domain.FlightStatusDelayed, f.Status)
		repo.AssertExpectations(t)
	})

	t.Run("CapacityBelowActiveBookings", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)

		repo.On("GetByID", mock.Anything, int64(4)).Return(current(), nil)
		repo.On("ActiveBookings", mock.Anything, int64(4)).Return(12, nil)

		_, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{Capacity: intPtr(10)})
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, "Capacity cannot be lower than the 12 active bookings", domain.PublicMessage(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("CapacityBelowOne", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(current(), nil)

		_, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{Capacity: intPtr(0)})
		assert.Equal(t, "Capacity must be at least 1", domain.PublicMessage(err))
	})

	t.Run("NumberTakenByOther", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(current(), nil)
		repo.On("NumberTaken", mock.Anything, "AA100", int64(4)).Return(true, nil)

		_, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{FlightNo: strPtr("aa100")})
		assert.Equal(t, "Flight number already exists", domain.PublicMessage(err))
	})

	t.Run("CancelRejected", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		cancelled := domain.FlightStatusCancelled
		repo.On("GetByID", mock.Anything, int64(4)).Return(current(), nil)

		_, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{Status: &cancelled})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("NoFields", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)

		_, err := service.UpdateFlight(ctx, 4, UpdateFlightInput{})
		assert.Equal(t, "No fields to update", domain.PublicMessage(err))
		assert.Empty(t, repo.Calls)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("GetByID", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound)

		_, err := service.UpdateFlight(ctx, 5, UpdateFlightInput{Capacity: intPtr(10)})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestFlightService_DeleteFlight(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("ActiveBookings", mock.Anything, int64(4)).Return(0, nil)
		repo.On("Delete", mock.Anything, int64(4)).Return(nil)

		require.NoError(t, service.DeleteFlight(ctx, 4))
		repo.AssertExpectations(t)
	})

	t.Run("HasActiveBookings", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("ActiveBookings", mock.Anything, int64(4)).Return(3, nil)

		err := service.DeleteFlight(ctx, 4)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, "Cannot delete flight with 3 active bookings. Cancel the flight first.", domain.PublicMessage(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("ActiveBookings", mock.Anything, int64(5)).Return(0, nil)
		repo.On("Delete", mock.Anything, int64(5)).Return(repository.ErrNotFound)

		err := service.DeleteFlight(ctx, 5)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("StorageError", func(t *testing.T) {
		repo := &MockFlightRepository{}
		service := newScheduleService(repo)
		repo.On("ActiveBookings", mock.Anything, int64(4)).Return(0, errors.New("connection refused"))

		err := service.DeleteFlight(ctx, 4)
		assert.Equal(t, domain.KindFatal, domain.KindOf(err))
	})
}
