package validation

import (
	"fmt"
	"regexp"
)

// ValidateUsername validates username format
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return fmt.Errorf("username must be between 3 and 20 characters")
	}

	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores and hyphens")
	}

	return nil
}

// ValidateSessionToken validates that a session token is in the correct
// format (hex-encoded, 64 characters for a 32-byte token)
func ValidateSessionToken(token string) error {
	if len(token) != 64 {
		return fmt.Errorf("session token must be exactly 64 characters")
	}

	if !regexp.MustCompile(`^[a-f0-9]{64}$`).MatchString(token) {
		return fmt.Errorf("session token contains invalid characters")
	}

	return nil
}

// ValidateExternalID validates an Autotrader listing identifier. IDs come
// from element ids or detail-link paths and are always URL-safe.
func ValidateExternalID(id string) error {
	if len(id) < 1 || len(id) > 64 {
		return fmt.Errorf("listing id must be between 1 and 64 characters")
	}

	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(id) {
		return fmt.Errorf("listing id contains invalid characters")
	}

	return nil
}

// ValidateRegistration validates a UK registration plate. Spaces are
// allowed; the value is stored exactly as entered.
func ValidateRegistration(reg string) error {
	if reg == "" {
		return nil // Optional field
	}

	if len(reg) > 10 {
		return fmt.Errorf("registration must be at most 10 characters")
	}

	if !regexp.MustCompile(`^[A-Z0-9 ]+$`).MatchString(reg) {
		return fmt.Errorf("registration can only contain uppercase letters, numbers and spaces")
	}

	return nil
}

// SanitizeText normalizes whitespace and strips HTML/XSS characters from
// free-text submissions (reviews, enquiries)
func SanitizeText(text string, maxLen int) (string, error) {
	text = regexp.MustCompile(`\s+`).ReplaceAllString(text, " ")
	text = regexp.MustCompile(`[<>\"'&]`).ReplaceAllString(text, "")

	if len(text) < 1 || len(text) > maxLen {
		return "", fmt.Errorf("text must be between 1 and %d characters", maxLen)
	}

	return text, nil
}
