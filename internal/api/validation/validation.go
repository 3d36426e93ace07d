package validation

import (
	"regexp"
	"strings"
)

var (
	// emailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// isrcRegex matches the platform's ISRC layout:
	// country-registrant-year-designation
	isrcRegex = regexp.MustCompile(`^[A-Z]{2}-[A-Z0-9]{3}-\d{2}-\d{5}$`)

	nonDigits = regexp.MustCompile(`\D`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidPhone strips separators and accepts 8-15 digits, the length
// envelope of international subscriber numbers.
func IsValidPhone(phone string) bool {
	digits := NormalizePhone(phone)
	return len(digits) >= 8 && len(digits) <= 15
}

// NormalizePhone removes everything but digits.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// IsEmailIdentifier reports whether a login identifier should be treated
// as an email rather than a phone number.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// IsValidISRC checks a system-generated ISRC code.
func IsValidISRC(code string) bool {
	return isrcRegex.MatchString(code)
}

// IsValidPassword checks the minimum password length.
func IsValidPassword(password string) (bool, string) {
	if len(password) < 6 {
		return false, "Password must be at least 6 characters"
	}
	if len(password) > 128 {
		return false, "Password must be at most 128 characters"
	}
	return true, ""
}
