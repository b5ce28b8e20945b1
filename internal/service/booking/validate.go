package booking

import (
	"strings"

	"github.com/Domenick1991/flightops/internal/domain"
)

// normalize trims every field, checks the required ones and canonicalises
// phone, email and seat. It never touches storage.
func normalize(in CreatePassengerBookingInput) (CreatePassengerBookingInput, error) {
	out := CreatePassengerBookingInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		FlightNo:  strings.TrimSpace(in.FlightNo),
		SeatNo:    strings.TrimSpace(in.SeatNo),
	}

	required := []struct {
		name  string
		value string
	}{
		{"first_name", out.FirstName},
		{"last_name", out.LastName},
		{"email", out.Email},
		{"phone", out.Phone},
		{"flight_no", out.FlightNo},
		{"seat_no", out.SeatNo},
	}
	for _, f := range required {
		if f.value == "" {
			return out, domain.ValidationError("Missing field: " + f.name)
		}
	}

	phone, err := domain.NormalizePhone(out.Phone)
	if err != nil {
		return out, err
	}
	out.Phone = phone

	email, err := domain.NormalizeEmail(out.Email)
	if err != nil {
		return out, err
	}
	out.Email = email
	out.SeatNo = strings.ToUpper(out.SeatNo)
	return out, nil
}
