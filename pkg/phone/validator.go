package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// PhoneFormat represents different phone number format types.
type PhoneFormat int

const (
	// FormatE164 is the E.164 format (+15551234567).
	FormatE164 PhoneFormat = iota
	// FormatInternational is the international format (+1 555-123-4567).
	FormatInternational
	// FormatNational is the national format ((555) 123-4567).
	FormatNational
)

// PhoneType represents the type of phone number.
type PhoneType string

const (
	// TypeFixedLine represents a fixed-line number.
	TypeFixedLine PhoneType = "FIXED_LINE"
	// TypeMobile represents a mobile number.
	TypeMobile PhoneType = "MOBILE"
	// TypeFixedLineOrMobile represents a number that could be either.
	TypeFixedLineOrMobile PhoneType = "FIXED_LINE_OR_MOBILE"
	// TypeTollFree represents a toll-free number.
	TypeTollFree PhoneType = "TOLL_FREE"
	// TypeVoip represents a VoIP number.
	TypeVoip PhoneType = "VOIP"
	// TypeUnknown represents an unknown type.
	TypeUnknown PhoneType = "UNKNOWN"
)

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid             bool      `json:"is_valid"`
	E164Format          string    `json:"e164_format"`
	InternationalFormat string    `json:"international_format"`
	NationalFormat      string    `json:"national_format"`
	CountryCode         string    `json:"country_code"`
	PhoneType           PhoneType `json:"phone_type"`
}

// ValidatePhone validates a phone number and returns detailed information.
// Advisors use this to vet lead phone numbers before dialing.
func ValidatePhone(phone, countryCode string) (*ValidationResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US" // Default to US
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	isValid := phonenumbers.IsValidNumber(parsed)

	e164 := phonenumbers.Format(parsed, phonenumbers.E164)
	international := phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	national := phonenumbers.Format(parsed, phonenumbers.NATIONAL)

	region := phonenumbers.GetRegionCodeForNumber(parsed)

	phoneType := getPhoneTypeString(phonenumbers.GetNumberType(parsed))

	return &ValidationResult{
		IsValid:             isValid,
		E164Format:          e164,
		InternationalFormat: international,
		NationalFormat:      national,
		CountryCode:         region,
		PhoneType:           phoneType,
	}, nil
}

// FormatPhone formats a phone number in the specified format.
func FormatPhone(phone, countryCode string, format PhoneFormat) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US"
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	var phoneFormat phonenumbers.PhoneNumberFormat
	switch format {
	case FormatInternational:
		phoneFormat = phonenumbers.INTERNATIONAL
	case FormatNational:
		phoneFormat = phonenumbers.NATIONAL
	default:
		phoneFormat = phonenumbers.E164
	}

	return phonenumbers.Format(parsed, phoneFormat), nil
}

// NormalizePhone normalizes a phone number to E.164 format.
func NormalizePhone(phone, countryCode string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US"
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// getPhoneTypeString converts phonenumbers.PhoneNumberType to PhoneType string.
func getPhoneTypeString(t phonenumbers.PhoneNumberType) PhoneType {
	switch t {
	case phonenumbers.FIXED_LINE:
		return TypeFixedLine
	case phonenumbers.MOBILE:
		return TypeMobile
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return TypeFixedLineOrMobile
	case phonenumbers.TOLL_FREE:
		return TypeTollFree
	case phonenumbers.VOIP:
		return TypeVoip
	default:
		return TypeUnknown
	}
}
