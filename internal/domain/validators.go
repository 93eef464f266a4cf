package domain

import (
	"fmt"
	"regexp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._]{3,20}$`)

// ValidateUsername checks the 3-20 char alphanumeric/"."/"_" rule.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-20 characters of letters, digits, '.' or '_'")
	}
	return nil
}

// ValidateAwardAmount checks that an award amount is a non-zero integer.
// Negative amounts are reserved for corrections and are accepted.
func ValidateAwardAmount(amount int64) error {
	if amount == 0 {
		return fmt.Errorf("amount must be non-zero")
	}
	return nil
}

// ValidateReason checks that the reason code is one of the known set.
func ValidateReason(reason PointReason) error {
	if !KnownReason(reason) {
		return fmt.Errorf("unknown reason code: %s", reason)
	}
	return nil
}

// ValidateQuestIncrement checks a progress increment is positive.
func ValidateQuestIncrement(increment int64) error {
	if increment <= 0 {
		return fmt.Errorf("increment must be positive, got %d", increment)
	}
	return nil
}
