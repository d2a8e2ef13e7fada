package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern         = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	cardNumberPattern    = regexp.MustCompile(`^[- \d]+$`)
	expDatePattern       = regexp.MustCompile(`\d{1,2}/\d{2,4}`)
	expDateStrictPattern = regexp.MustCompile(`^\d{1,2}/\d{2,4}$`)
	cvvPattern           = regexp.MustCompile(`\d{3,4}`)
	cvvStrictPattern     = regexp.MustCompile(`^\d{3,4}$`)
)

// Email accepts word characters with single dot or dash separators and a
// two or three letter final label.
func Email(value string) bool {
	return emailPattern.MatchString(value)
}

// CardNumber accepts digits, spaces and dashes only, with at least one digit.
func CardNumber(value string) bool {
	return cardNumberPattern.MatchString(value) && strings.ContainsAny(value, "0123456789")
}

// ExpDate matches M/YY through MM/YYYY anywhere in the value.
func ExpDate(value string) bool {
	return expDatePattern.MatchString(value)
}

// ExpDateStrict requires the whole value to be M/YY through MM/YYYY.
func ExpDateStrict(value string) bool {
	return expDateStrictPattern.MatchString(value)
}

// CVV matches three or four consecutive digits anywhere in the value.
func CVV(value string) bool {
	return cvvPattern.MatchString(value)
}

// CVVStrict requires the whole value to be three or four digits.
func CVVStrict(value string) bool {
	return cvvStrictPattern.MatchString(value)
}
