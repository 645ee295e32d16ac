package careline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Persisted layouts.
const (
	TimestampLayout = "2006-01-02T15:04:05"
	DateLayout      = "2006-01-02"
)

// accepted input layouts, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp reads a stored or submitted date-time. Zone offsets are
// dropped; wall-clock values are kept as written.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wall(t), nil
		}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a timestamp", ErrInvalidInput, s)
}

// ParseDate reads a date, accepting a full timestamp and truncating it.
func ParseDate(s string) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidInput, strings.TrimSpace(s))
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatTimestamp renders t to the second, or "" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatBool renders booleans the way the datasets store them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ParseBool reads a stored boolean. Blank and unrecognized text is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes", "sim":
		return true
	}
	return false
}

func FormatInt(n int) string { return strconv.Itoa(n) }

// ParseCount reads a stored non-negative count. Blank or unreadable values
// read as 0, and decimal text such as "3.0" is truncated.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

// FormatMinutes renders a duration the way the datasets store floats: the
// shortest form that round-trips, always with a fractional part ("45.0").
func FormatMinutes(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// ParseMinutes reads a stored duration; blank is 0.
func ParseMinutes(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Timestamp is a submitted date-time. The zero value means "not given".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// Or returns ts, or fallback when ts was not given.
func (ts Timestamp) Or(fallback time.Time) time.Time {
	if ts.IsZero() {
		return fallback
	}
	return ts.Time
}

// Resolve returns ts when given, else stored when set, else now.
func (ts Timestamp) Resolve(stored, now time.Time) Timestamp {
	switch {
	case !ts.IsZero():
		return ts
	case !stored.IsZero():
		return Timestamp{Time: stored}
	}
	return Timestamp{Time: now}
}

func (ts Timestamp) String() string { return FormatTimestamp(ts.Time) }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonText(data)
	if err != nil || !ok {
		*ts = Timestamp{}
		return err
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// Date is a submitted calendar date. The zero value means "not given".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) Or(fallback time.Time) time.Time {
	if d.IsZero() {
		return NewDate(fallback).Time
	}
	return d.Time
}

// Resolve returns d when given, else stored when set, else the date of now.
func (d Date) Resolve(stored, now time.Time) Date {
	switch {
	case !d.IsZero():
		return d
	case !stored.IsZero():
		return NewDate(stored)
	}
	return NewDate(now)
}

func (d Date) String() string { return FormatDate(d.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonText(data)
	if err != nil || !ok {
		*d = Date{}
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// jsonText unwraps a JSON string. null and "" report ok=false.
func jsonText(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false, fmt.Errorf("%w: expected a string, got %s", ErrInvalidInput, data)
	}
	if strings.TrimSpace(s) == "" {
		return "", false, nil
	}
	return s, true, nil
}

// StoredTimestamp parses a stored cell, returning the zero time for blank or
// unreadable text.
func StoredTimestamp(s string) time.Time {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func StoredDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
