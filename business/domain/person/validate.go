package person

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsEmailAddress reports whether s looks like an email address. Spaces are
// stripped before matching, empty input is invalid.
func IsEmailAddress(s string) bool {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

// HasTwoUppercaseLetters reports whether s contains exactly two uppercase
// letters. No other character classes are checked.
func HasTwoUppercaseLetters(s string) bool {
	var count int
	for _, r := range s {
		if unicode.IsUpper(r) {
			count++
			if count > 2 {
				return false
			}
		}
	}
	return count == 2
}
