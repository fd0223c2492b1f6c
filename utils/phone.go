package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is assumed for numbers given without a country code
const defaultPhoneRegion = "VE"

// fallbackPhoneRegions are tried in order when the default region
// rejects the number
var fallbackPhoneRegions = []string{
	"AR", "CO", "MX", "US", "ES",
	"BR", "CL", "PE", "EC",
	"GB", "FR", "DE", "IT", "PT",
}

// NormalizePhone canonicalizes a raw phone number to E.164 format.
// Numbers with an international prefix ("+" or "00") are parsed as-is;
// bare national numbers are tried against the default region first and
// then the fallback regions.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}

	if strings.HasPrefix(cleaned, "+") {
		num, err := phonenumbers.Parse(cleaned, "")
		if err == nil && phonenumbers.IsPossibleNumber(num) {
			return phonenumbers.Format(num, phonenumbers.E164), nil
		}
	}

	regions := append([]string{defaultPhoneRegion}, fallbackPhoneRegions...)
	for _, region := range regions {
		num, err := phonenumbers.Parse(cleaned, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsPossibleNumber(num) {
			return phonenumbers.Format(num, phonenumbers.E164), nil
		}
	}

	return "", fmt.Errorf("invalid phone number: %s", raw)
}
