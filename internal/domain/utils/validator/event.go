package validator

import (
	"time"
	"unicode/utf8"
)

func EventTitle(name string) bool {
	return utf8.RuneCountInString(name) >= 3 && utf8.RuneCountInString(name) <= 120
}

func EventDescription(description string) bool {
	return utf8.RuneCountInString(description) <= 2000
}

func EventLocation(location string) bool {
	return utf8.RuneCountInString(location) >= 2 && utf8.RuneCountInString(location) <= 200
}

// EventDate accepts dates that are not in the past.
func EventDate(date time.Time, now time.Time) bool {
	return !date.Before(now)
}

func EventCapacity(capacity int) bool {
	return capacity > 0
}
