package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format for timestamps: local wall clock, second precision.
const DateTimeLayout = "2006-01-02T15:04:05"

var inputLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// DateTime is a timestamp that travels as "2006-01-02T15:04:05".
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// DateTimeFromMillis restores a value stored as Unix milliseconds.
func DateTimeFromMillis(ms int64) DateTime {
	return DateTime{Time: time.UnixMilli(ms)}
}

func ParseDateTime(raw string) (DateTime, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return DateTime{Time: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid date-time %q, expected %s", raw, DateTimeLayout)
}

func (d DateTime) Millis() int64 {
	return d.UnixMilli()
}

func (d DateTime) String() string {
	return d.Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
