package copybook

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	SPACE rune = ' ' // UTF-8 32
	ZERO  rune = '0' // UTF-8 48
)

// Alignment decides which edge of a zero-filled number the digits sit on.
type Alignment int

const (
	// Leading places the digits on the right edge, filling zeros on the left.
	Leading Alignment = iota
	// Trailing places the digits on the left edge, filling zeros on the right.
	Trailing
)

// PadRight appends rune 'r' to the right side of string 's' until its length in characters equals 'l'.
func PadRight(s string, l int, r rune) string {
	n := utf8.RuneCountInString(s)
	if n >= l {
		return s
	}
	return s + strings.Repeat(string(r), l-n)
}

// PadLeft prepends rune 'r' to the left side of string 's' until its length in characters equals 'l'.
func PadLeft(s string, l int, r rune) string {
	n := utf8.RuneCountInString(s)
	if n >= l {
		return s
	}
	return strings.Repeat(string(r), l-n) + s
}

// PadString right-pads value with spaces to width characters. Longer values
// are returned unchanged.
func PadString(width int, value string) string {
	return PadRight(value, width, SPACE)
}

// PadInteger zero-fills the decimal representation of value to width characters.
func PadInteger(width int, value int64, align Alignment) string {
	s := strconv.FormatInt(value, 10)
	if align == Trailing {
		return PadRight(s, width, ZERO)
	}
	return PadLeft(s, width, ZERO)
}

// PadDecimal formats value with exactly places digits after the point and
// zero-fills on the left to width characters. The sign and the point count
// toward width.
func PadDecimal(width int, value float64, places int) string {
	return PadLeft(strconv.FormatFloat(value, 'f', places, 64), width, ZERO)
}

// IsBlank reports whether v is text whose trimmed content is empty.
func IsBlank(v interface{}) bool {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s) == ""
	case []byte:
		return strings.TrimSpace(string(s)) == ""
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s down to at most l characters.
func truncate(s string, l int) string {
	if runeLen(s) <= l {
		return s
	}
	return string([]rune(s)[:l])
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
