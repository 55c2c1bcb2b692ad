package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingData matches any *MissingDataError via errors.Is.
	ErrMissingData = errors.New("missing data for yesterday or today")

	// ErrHouseNotFound is returned when a user owns no house.
	ErrHouseNotFound = errors.New("house not found")

	// ErrUserNotFound is returned when no user matches a login.
	ErrUserNotFound = errors.New("user not found")
)

// MissingDataError reports a report date whose day or previous day has no
// readings. No partial report is produced.
type MissingDataError struct {
	HouseID int
	Date    time.Time
	Label   string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s: house %d has no readings for %s (%s)",
		ErrMissingData, e.HouseID, e.Label, e.Date.Format(DateLayout))
}

// Is reports whether target is ErrMissingData.
func (e *MissingDataError) Is(target error) bool { return target == ErrMissingData }

// RangeError is a client-side mistake in a requested period, such as a start
// date after the end date.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return e.Msg }
