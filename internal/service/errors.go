package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDate is returned for a malformed as-of date, before any lookup.
	ErrInvalidDate = errors.New("invalid date, expected format YYYY-MM-DD")
	// ErrInvalidStatus is returned for an unknown consolidation or ledger status.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidKind is returned for an unknown amendment kind.
	ErrInvalidKind = errors.New("invalid amendment kind")
)

// DateLayout is the wire format for effective and as-of dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date, echoing the offending value on failure.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}
