package utils

import (
	"regexp"
	"strings"
)

const phoneDigits = 11

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigits  = regexp.MustCompile(`\D`)
)

// Credentials is the canonical form of a login credential pair.
// An empty field means the credential is absent.
type Credentials struct {
	Email       string
	PhoneNumber string
}

// NormalizeEmail trims and lowercases email. An empty result means absent.
func NormalizeEmail(email string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(email))
	if cleaned == "" {
		return "", nil
	}
	if !emailRegex.MatchString(cleaned) {
		return "", ValidationError("Invalid email address")
	}
	return cleaned, nil
}

// NormalizePhone strips every non-digit. An empty input means absent.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	cleaned := nonDigits.ReplaceAllString(phone, "")
	if len(cleaned) != phoneDigits {
		return "", ValidationError("Phone number must be exactly 11 digits")
	}
	return cleaned, nil
}

// NormalizeCredentials validates and cleans an email/phone pair. At least one
// of the two must be present.
func NormalizeCredentials(email, phone string) (Credentials, error) {
	cleanedPhone, err := NormalizePhone(phone)
	if err != nil {
		return Credentials{}, err
	}
	cleanedEmail, err := NormalizeEmail(email)
	if err != nil {
		return Credentials{}, err
	}
	if cleanedEmail == "" && cleanedPhone == "" {
		return Credentials{}, ValidationError("Please provide either an email or a phone number")
	}
	return Credentials{Email: cleanedEmail, PhoneNumber: cleanedPhone}, nil
}

// LookupKey turns a login credential into the field to search and the value
// to search for. Credentials containing "@" are emails, anything else a phone.
// The value is not validated: a malformed credential simply matches nothing.
func LookupKey(credential string) (field, value string) {
	if strings.Contains(credential, "@") {
		return "email", strings.ToLower(strings.TrimSpace(credential))
	}
	return "phoneNumber", nonDigits.ReplaceAllString(credential, "")
}
