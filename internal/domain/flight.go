package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "Scheduled"
	FlightStatusDelayed   FlightStatus = "Delayed"
	FlightStatusCancelled FlightStatus = "Cancelled"
	FlightStatusCompleted FlightStatus = "Completed"
)

type Flight struct {
	ID            int64        `db:"id" json:"flight_id"`
	FlightNo      string       `db:"flight_no" json:"flight_no"`
	AirlineID     int64        `db:"airline_id" json:"airline_id"`
	FromAirportID int64        `db:"from_airport_id" json:"from_airport_id"`
	ToAirportID   int64        `db:"to_airport_id" json:"to_airport_id"`
	DepartureTime time.Time    `db:"departure_time" json:"departure_time"`
	ArrivalTime   time.Time    `db:"arrival_time" json:"arrival_time"`
	Status        FlightStatus `db:"status" json:"status"`
	Capacity      int          `db:"capacity" json:"capacity"`
}

func (f *Flight) IsCancelled() bool {
	return f.Status == FlightStatusCancelled
}
