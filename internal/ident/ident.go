// Package ident holds the pure identifier, slug, and time-format helpers
// shared by the registration and lifecycle services.
package ident

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned by To12Hour for input that is not a well-formed
// 24-hour "HH:MM" string.
var ErrInvalidTime = errors.New("invalid time, want HH:MM")

const passcodeLength = 8

var passcodeAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// NewPasscode returns an 8-character opaque identifier drawn from a base-36
// alphabet. Collisions are not checked against existing passcodes; the 36^8
// space is large relative to per-event attendee counts.
func NewPasscode() (string, error) {
	b := make([]rune, passcodeLength)
	max := big.NewInt(int64(len(passcodeAlphabet)))
	for i := 0; i < passcodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passcodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

var nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lower-cased, trimmed, runs of
// non [a-z0-9] collapsed to a single hyphen, edge hyphens stripped. Two
// different titles may produce the same slug; uniqueness is the caller's
// concern.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugRunes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// To12Hour converts a 24-hour "HH:MM" string to "hh:mmam" / "hh:mmpm" with a
// zero-padded 12-hour hour ("00:05" -> "12:05am", "13:00" -> "01:00pm").
// Malformed input is rejected with ErrInvalidTime before any store call.
func To12Hour(t string) (string, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	period := "am"
	if hours >= 12 {
		period = "pm"
	}
	hours12 := hours % 12
	if hours12 == 0 {
		hours12 = 12
	}
	return fmt.Sprintf("%02d:%02d%s", hours12, minutes, period), nil
}
