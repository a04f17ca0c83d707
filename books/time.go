package books

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIMESTAMP - Ordering key for transactions
// =============================================================================

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Timestamp is a transaction's creation date and time of day, both stored as
// zero-padded ISO strings. Ordering is lexicographic on (Date, Time); Time only
// breaks ties within a date and an empty Time sorts first.
type Timestamp struct {
	Date string
	Time string
}

// ParseTimestamp validates and zero-pads a date ("2025-3-7") and an optional
// clock ("9:05" or "09:05:30").
func ParseTimestamp(date, clock string) (Timestamp, error) {
	d, err := padDate(date)
	if err != nil {
		return Timestamp{}, err
	}
	if strings.TrimSpace(clock) == "" {
		return Timestamp{Date: d}, nil
	}
	c, err := padClock(clock)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Date: d, Time: c}, nil
}

func padDate(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return "", &ValidationError{Field: "date", Code: "invalid_date", Message: fmt.Sprintf("invalid date %q", s)}
	}
	nums, err := atois(parts)
	if err != nil {
		return "", &ValidationError{Field: "date", Code: "invalid_date", Message: fmt.Sprintf("invalid date %q", s)}
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return "", &ValidationError{Field: "date", Code: "invalid_date", Message: fmt.Sprintf("invalid date %q", s)}
	}
	return t.Format(DateLayout), nil
}

func padClock(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", &ValidationError{Field: "time", Code: "invalid_time", Message: fmt.Sprintf("invalid time %q", s)}
	}
	nums, err := atois(parts)
	if err != nil {
		return "", &ValidationError{Field: "time", Code: "invalid_time", Message: fmt.Sprintf("invalid time %q", s)}
	}
	if len(nums) == 2 {
		nums = append(nums, 0)
	}
	if nums[0] < 0 || nums[0] > 23 || nums[1] < 0 || nums[1] > 59 || nums[2] < 0 || nums[2] > 59 {
		return "", &ValidationError{Field: "time", Code: "invalid_time", Message: fmt.Sprintf("invalid time %q", s)}
	}
	return fmt.Sprintf("%02d:%02d:%02d", nums[0], nums[1], nums[2]), nil
}

func atois(parts []string) ([]int, error) {
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Before reports whether ts replays before other. Dates compare first; a
// missing time of day sorts ahead of any time on the same date.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Date != other.Date {
		return ts.Date < other.Date
	}
	return ts.Time < other.Time
}

// Equal reports whether both timestamps name the same instant.
func (ts Timestamp) Equal(other Timestamp) bool { return ts == other }

// IsZero reports whether neither a date nor a time is set.
func (ts Timestamp) IsZero() bool { return ts.Date == "" && ts.Time == "" }

// SortKey is the single string whose lexicographic order matches Before.
func (ts Timestamp) SortKey() string { return ts.Date + "T" + ts.Time }

func (ts Timestamp) String() string {
	if ts.Time == "" {
		return ts.Date
	}
	return ts.Date + " " + ts.Time
}

// AsTime parses the timestamp as UTC. Invalid components yield the zero time.
func (ts Timestamp) AsTime() time.Time {
	clock := ts.Time
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse(DateLayout+" "+ClockLayout, ts.Date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}
