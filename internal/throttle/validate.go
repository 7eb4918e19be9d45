package throttle

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxPasscodeLength is the longest passcode forwarded to the backend.
const MaxPasscodeLength = 10

var passcodePattern = regexp.MustCompile(`^\d{1,10}$`)

// ValidatePasscode checks that a passcode is 1-10 ASCII digits. The rules are
// applied in order so the first violation decides the message.
func ValidatePasscode(passcode string) error {
	if strings.TrimSpace(passcode) == "" {
		return &ValidationError{Reason: ReasonEmpty, Message: "Passcode is required."}
	}
	// Length is in runes, not UTF-16 units. They only differ for non-digit
	// input, which fails the digit rule either way.
	if utf8.RuneCountInString(passcode) > MaxPasscodeLength {
		return &ValidationError{Reason: ReasonTooLong, Message: "Passcode must not exceed 10 digits."}
	}
	if !passcodePattern.MatchString(passcode) {
		return &ValidationError{Reason: ReasonNotNumeric, Message: "Passcode should only contain numbers."}
	}
	return nil
}
