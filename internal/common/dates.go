package common

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date is not in dd/mm/yyyy form or does not exist.
var ErrInvalidDate = errors.New("invalid date, use dd/mm/yyyy")

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
	stampLayout    = "20060102-150405"
)

// FormatDateTime renders t as dd/mm/yyyy hh:mm in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateTimeLayout)
}

// FileStamp renders t as yyyymmdd-hhmmss for file names.
func FileStamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(stampLayout)
}

// ParseDate reads dd/mm/yyyy as midnight in loc. Blank input returns nil without error.
func ParseDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, Validation(ErrInvalidDate.Error(), ErrInvalidDate)
	}
	return &t, nil
}
