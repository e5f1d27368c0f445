// Package dateutil resolves the publication date of a book.
//
// A date value is either literal text, passed through, or "today" with an
// optional layout: "today", "today:long", "today:MMMM YYYY".
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxLayoutLength limits layout length.
const MaxLayoutLength = 50

// Today is the keyword for the build date.
const Today = "today"

// DefaultLayout is used for a bare "today".
const DefaultLayout = "YYYY-MM-DD"

// Presets name common layouts.
var Presets = map[string]string{
	"iso":   "YYYY-MM-DD",
	"long":  "MMMM D, YYYY",
	"month": "MMMM YYYY",
	"year":  "YYYY",
}

// tokens maps layout tokens to Go reference components, longest first.
var tokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout converts a token layout (YYYY, YY, MMMM, MMM, MM, M, DD, D) to a
// Go time layout. Text in brackets is literal: "[Edition of] YYYY".
func Layout(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: empty layout", ErrInvalidDateFormat)
	case len(format) > MaxLayoutLength:
		return "", fmt.Errorf("%w: layout exceeds %d characters", ErrInvalidDateFormat, MaxLayoutLength)
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		n := 1
		lit := format[i : i+1]
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.token) {
				n, lit = len(t.token), t.goFmt
				break
			}
		}
		b.WriteString(lit)
		i += n
	}
	return b.String(), nil
}

// Resolve returns the date text for value at time now. Values other than
// "today" and "today:<layout or preset>" are returned unchanged.
func Resolve(value string, now time.Time) (string, error) {
	keyword, layout, hasLayout := strings.Cut(value, ":")
	if !strings.EqualFold(keyword, Today) {
		return value, nil
	}

	switch {
	case !hasLayout:
		layout = DefaultLayout
	case layout == "":
		return "", fmt.Errorf("%w: empty layout after %q", ErrInvalidDateFormat, Today+":")
	default:
		if preset, ok := Presets[strings.ToLower(layout)]; ok {
			layout = preset
		}
	}

	goFmt, err := Layout(layout)
	if err != nil {
		return "", err
	}
	return now.Format(goFmt), nil
}
