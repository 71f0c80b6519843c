package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fullname: letters, spaces, hyphens, apostrophes only.
var fullnameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

var countryCodeRe = regexp.MustCompile(`^[A-Za-z]{2}$`)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a digit and
// a punctuation or symbol character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidFullname(fullname string) bool {
	return fullname != "" && fullnameRe.MatchString(fullname)
}

func IsValidCountryCode(code string) bool {
	return countryCodeRe.MatchString(code)
}

// IsValidClock accepts 24h "HH:MM".
func IsValidClock(s string) bool {
	return clockRe.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD stay date as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Slugify lowercases s and joins alphanumeric runs with single hyphens.
// Names with no ASCII letters or digits get a random "item-" slug.
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "item-" + uuid.NewString()[:8]
	}
	return slug
}
