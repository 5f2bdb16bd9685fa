package location

import (
	"sync/atomic"
	"time"
)

var current atomic.Pointer[time.Location]

// Set loads the named IANA zone and makes it the platform's local time.
func Set(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	current.Store(loc)
	return nil
}

// Location returns the platform's local time zone, UTC until Set is called.
func Location() *time.Location {
	if loc := current.Load(); loc != nil {
		return loc
	}
	return time.UTC
}
