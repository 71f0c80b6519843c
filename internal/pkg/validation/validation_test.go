package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Etuna2024!"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("nodigits!!"))
	assert.False(t, IsValidPassword("nospecial123"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("guest@etuna.com"))
	assert.False(t, IsValidEmail("guest@etuna"))
	assert.False(t, IsValidEmail("guest etuna.com"))
}

func TestIsValidFullname(t *testing.T) {
	assert.True(t, IsValidFullname("Ndapewa O'Neil-Shikongo"))
	assert.False(t, IsValidFullname("R2D2"))
	assert.False(t, IsValidFullname(""))
}

func TestIsValidClock(t *testing.T) {
	assert.True(t, IsValidClock("14:00"))
	assert.True(t, IsValidClock("09:30"))
	assert.False(t, IsValidClock("24:00"))
	assert.False(t, IsValidClock("9:30"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2026-03-14")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDate("14/03/2026")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "etuna-guesthouse", Slugify("  Etuna Guesthouse "))
	assert.Equal(t, "kitchen-bar", Slugify("Kitchen & Bar!"))

	a, b := Slugify("ホテル"), Slugify("ホテル")
	assert.Regexp(t, `^item-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^item-`, Slugify("  !!  "))
}

func TestIsValidCountryCode(t *testing.T) {
	assert.True(t, IsValidCountryCode("NA"))
	assert.False(t, IsValidCountryCode("NAM"))
}
