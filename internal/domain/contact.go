package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var phoneFormatting = strings.NewReplacer("-", "", " ", "", "(", "", ")", "", "+", "")

// NormalizeEmail checks the address format and lower-cases it.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if !emailPattern.MatchString(email) {
		return "", ValidationError("Invalid email format")
	}
	return strings.ToLower(email), nil
}

// NormalizePhone strips formatting characters and requires exactly ten digits.
func NormalizePhone(raw string) (string, error) {
	phone := phoneFormatting.Replace(strings.TrimSpace(raw))
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ValidationError("Phone number must contain only digits")
		}
	}
	if len(phone) != 10 {
		return "", ValidationError("Phone number must be exactly 10 digits")
	}
	return phone, nil
}
