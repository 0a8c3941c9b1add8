package models

import (
	"fmt"
	"strings"
)

// Supported interface and phrase locales
const (
	LocaleRU = "ru"
	LocaleEN = "en"
	LocaleUZ = "uz"
)

// DefaultLocale is assigned to users on first contact
const DefaultLocale = LocaleRU

// Locales lists every supported locale in display order
var Locales = []string{LocaleRU, LocaleEN, LocaleUZ}

// IsLocale reports whether s is a supported locale
func IsLocale(s string) bool {
	for _, l := range Locales {
		if l == s {
			return true
		}
	}
	return false
}

// Direction is a "source-target" locale pair, e.g. "ru-en"
type Direction string

// Directions lists every offered translation direction
var Directions = []Direction{"ru-en", "en-ru", "ru-uz", "uz-ru", "en-uz", "uz-en"}

// ParseDirection validates a "source-target" tag
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction %q", s)
	}
	return d, nil
}

// Valid reports whether both sides are supported and distinct
func (d Direction) Valid() bool {
	src, tgt, ok := strings.Cut(string(d), "-")
	return ok && src != tgt && IsLocale(src) && IsLocale(tgt)
}

// Source returns the locale the phrase is shown in
func (d Direction) Source() string {
	src, _, _ := strings.Cut(string(d), "-")
	return src
}

// Target returns the locale the user translates into
func (d Direction) Target() string {
	_, tgt, _ := strings.Cut(string(d), "-")
	return tgt
}
