package domain

import "time"

const (
	EventBookingCreated     = "booking_created"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingReactivated = "booking_reactivated"
	EventFlightCancelled    = "flight_cancelled"
)

type BookingEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id,omitempty"`
	FlightID    int64     `json:"flight_id,omitempty"`
	FlightNo    string    `json:"flight_no,omitempty"`
	SeatNo      string    `json:"seat_no,omitempty"`
	PassengerID int64     `json:"passenger_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	Status      string    `json:"status,omitempty"`
	Method      string    `json:"method,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
