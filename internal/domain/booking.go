package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "Booked"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusBooked || s == BookingStatusCancelled
}

type Booking struct {
	ID          int64         `db:"id" json:"booking_id"`
	Date        time.Time     `db:"booking_date" json:"date"`
	SeatNo      string        `db:"seat_no" json:"seat_no"`
	Status      BookingStatus `db:"status" json:"status"`
	BookingTime time.Time     `db:"booking_time" json:"booking_time"`
	PassengerID int64         `db:"passenger_id" json:"passenger_id"`
	FlightID    int64         `db:"flight_id" json:"flight_id"`
}

// BookingDetails is a booking joined with its passenger and flight.
type BookingDetails struct {
	Booking
	FirstName    string       `db:"first_name" json:"first_name"`
	LastName     string       `db:"last_name" json:"last_name"`
	Email        string       `db:"email" json:"email"`
	FlightNo     string       `db:"flight_no" json:"flight_no"`
	FlightStatus FlightStatus `db:"flight_status" json:"flight_status"`
}

type BookingFilter struct {
	Status      BookingStatus
	PassengerID int64
	FlightID    int64
}

// CreationMethod records which commit path produced a booking.
type CreationMethod string

const (
	CreationMethodStoredProcedure CreationMethod = "stored_procedure"
	CreationMethodManual          CreationMethod = "manual"
)

// Audit operations written by storage and by booking maintenance. The
// notification worker records event types as operations.
const (
	AuditOperationCancel = "CANCEL"
	AuditOperationUpdate = "UPDATE"
	AuditOperationDelete = "DELETE"
)

type AuditEntry struct {
	ID        int64     `db:"id" json:"audit_id"`
	BookingID int64     `db:"booking_id" json:"booking_id"`
	Operation string    `db:"operation" json:"operation"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BookingReceipt identifies a freshly created booking and its passenger.
type BookingReceipt struct {
	BookingID   int64         `db:"booking_id"`
	PassengerID int64         `db:"passenger_id"`
	FirstName   string        `db:"first_name"`
	LastName    string        `db:"last_name"`
	Status      BookingStatus `db:"status"`
}
