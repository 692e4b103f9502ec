package form

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"orderform-backend/internal/domain"
)

// MobilePattern is Bangladesh mobile numbering: operator prefix 013-019
// followed by 8 digits.
const MobilePattern = `^01[3-9]\d{8}$`

var mobilePattern = regexp.MustCompile(MobilePattern)

var nonDigits = regexp.MustCompile(`\D`)

// SanitizeMobile keeps digits only and caps the result at 11 digits.
// e.g. "+8801712-345678" -> "88017123456"
func SanitizeMobile(raw string) string {
	s := nonDigits.ReplaceAllString(raw, "")
	if len(s) > domain.MobileDigits {
		s = s[:domain.MobileDigits]
	}
	return s
}

func ValidateName(v string) domain.FieldStatus {
	return minLength(v, domain.MinNameLength)
}

// ValidateMobile does not trim; the input listener already strips everything
// that is not a digit.
func ValidateMobile(v string) domain.FieldStatus {
	if mobilePattern.MatchString(v) {
		return domain.FieldValid
	}
	return domain.FieldInvalid
}

func ValidateAddress(v string) domain.FieldStatus {
	return minLength(v, domain.MinAddressLength)
}

func minLength(v string, n int) domain.FieldStatus {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
		return domain.FieldInvalid
	}
	return domain.FieldValid
}
