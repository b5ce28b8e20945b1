package storage

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// Violation is a storage-side rule that rejected a statement.
type Violation int

const (
	ViolationNone Violation = iota
	ViolationSeatTaken
	ViolationFlightFull
	ViolationFlightCancelled
	ViolationFlightNotFound
	ViolationEmailTaken
	ViolationPhoneTaken
	ViolationForeignKey
	ViolationFlightNumberTaken
)

func (v Violation) String() string {
	switch v {
	case ViolationSeatTaken:
		return "seat_taken"
	case ViolationFlightFull:
		return "flight_full"
	case ViolationFlightCancelled:
		return "flight_cancelled"
	case ViolationFlightNotFound:
		return "flight_not_found"
	case ViolationEmailTaken:
		return "email_taken"
	case ViolationPhoneTaken:
		return "phone_taken"
	case ViolationForeignKey:
		return "foreign_key"
	case ViolationFlightNumberTaken:
		return "flight_number_taken"
	default:
		return "none"
	}
}

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"

	// SQLite extended result codes.
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Classify maps a driver error to the rule it violated. Trigger and
// procedure messages are matched by text because they share a generic
// SQLSTATE.
func Classify(err error) Violation {
	if err == nil {
		return ViolationNone
	}

	code, constraint, msg := describe(err)
	text := strings.ToLower(constraint + " " + msg)

	switch {
	case strings.Contains(text, "seat already booked"),
		strings.Contains(text, "ux_booking_flight_seat"),
		strings.Contains(text, "bookings.flight_id, bookings.seat_no"):
		return ViolationSeatTaken
	case strings.Contains(text, "flight full"), strings.Contains(text, "no seats available"):
		return ViolationFlightFull
	case strings.Contains(text, "flight cancelled"):
		return ViolationFlightCancelled
	case strings.Contains(text, "flight not found"):
		return ViolationFlightNotFound
	}

	switch code {
	case sqlStateUniqueViolation:
		switch {
		case strings.Contains(text, "email"):
			return ViolationEmailTaken
		case strings.Contains(text, "phone"):
			return ViolationPhoneTaken
		case strings.Contains(text, "flight_no"):
			return ViolationFlightNumberTaken
		}
	case sqlStateForeignKeyViolation:
		return ViolationForeignKey
	}
	return ViolationNone
}

func describe(err error) (code, constraint, msg string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, pgErr.Message
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, pqErr.Message
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			code = sqlStateUniqueViolation
		case sqliteConstraintForeignKey:
			code = sqlStateForeignKeyViolation
		}
		return code, "", liteErr.Error()
	}

	return "", "", err.Error()
}
