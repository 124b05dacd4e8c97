package domain

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

// Минимум 6 символов, без пробелов по краям.
func ValidPassword(s string) bool {
	return len(s) >= 6 && strings.TrimSpace(s) == s
}

func ValidName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= 120
}
