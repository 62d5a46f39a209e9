package intake

import (
	"strings"
	"unicode"

	"nexusq/internal/constants"
)

func dialCode(country string) string {
	if code, ok := constants.CountryDialCodes[strings.ToUpper(country)]; ok {
		return code
	}
	return constants.CountryDialCodes[constants.DefaultCountry]
}

// NormalizePhone converts local input into +<code><number> using the country's
// dialling prefix. Input it cannot place is returned cleaned but without a leading +.
func NormalizePhone(raw, country string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return ""
	}

	code := dialCode(country)
	switch {
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, code):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+" + code + cleaned[1:]
	case allDigits(cleaned) && len(cleaned) >= 9 && len(cleaned) <= 10:
		return "+" + code + cleaned
	}
	return cleaned
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
