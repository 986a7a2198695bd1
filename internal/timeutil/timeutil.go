// Package timeutil parses the timestamps customers type and computes the
// hour intervals the ordering rules are written in terms of.
package timeutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Layout is the canonical textual form every stored timestamp uses.
const Layout = "02.01.2006 15:04"

// LayoutSeconds is used for conversation history timestamps.
const LayoutSeconds = "02.01.2006 15:04:05"

var ErrInvalidTimeFormat = errors.New("invalid time format")

var nl = newNaturalParser()

func newNaturalParser() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}

// Parse resolves text against the current wall clock.
func Parse(text string) (time.Time, error) {
	return ParseAt(text, time.Now())
}

// ParseAt tries the strict layout first, then loose layout detection,
// then natural-language phrases ("3pm tomorrow") relative to now. Loose
// detection runs before the phrase rules so a dated string is never
// half-matched by a relative rule. Both fallbacks failing yields
// ErrInvalidTimeFormat.
func ParseAt(text string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(Layout, text, now.Location()); err == nil {
		return t, nil
	}
	if t, err := dateparse.ParseIn(text, now.Location()); err == nil {
		return t, nil
	}
	if r, err := nl.Parse(text, now); err == nil && r != nil {
		return r.Time, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, text)
}

// Normalize parses text and re-renders it in the canonical layout.
func Normalize(text string) (string, error) {
	return NormalizeAt(text, time.Now())
}

func NormalizeAt(text string, now time.Time) (string, error) {
	t, err := ParseAt(text, now)
	if err != nil {
		return "", err
	}
	return Format(t), nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// HoursBetween returns the signed interval (b - a) in hours, keeping
// sub-hour precision.
func HoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}
