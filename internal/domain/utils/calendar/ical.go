package calendar

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Entry is a single calendar entry.
type Entry struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Export serializes entries into an iCalendar (.ics) document. Each entry gets reminders
// one day and one hour before it starts. Entries without an end last one hour.
func Export(entries []Entry) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//CU Clubs//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	now := time.Now()
	for _, entry := range entries {
		e := cal.AddEvent(fmt.Sprintf("%s@cu-clubs", entry.ID))

		e.SetDtStampTime(now)
		e.SetCreatedTime(now)
		e.SetModifiedAt(now)

		e.SetStartAt(entry.Start)
		if !entry.End.IsZero() {
			e.SetEndAt(entry.End)
		} else {
			e.SetEndAt(entry.Start.Add(time.Hour))
		}

		e.SetSummary(entry.Title)
		e.SetDescription(entry.Description)
		e.SetLocation(entry.Location)
		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetTimeTransparency(ics.TransparencyOpaque)
		e.SetClass(ics.ClassificationPublic)
		e.SetSequence(0)

		dayAlarm := e.AddAlarm()
		dayAlarm.SetAction(ics.ActionDisplay)
		dayAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-P1D")
		dayAlarm.SetDescription(fmt.Sprintf("Reminder: %s (tomorrow)", entry.Title))

		hourAlarm := e.AddAlarm()
		hourAlarm.SetAction(ics.ActionDisplay)
		hourAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-PT1H")
		hourAlarm.SetDescription(fmt.Sprintf("Reminder: %s (in an hour)", entry.Title))
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("error serializing calendar: %w", err)
	}
	return buf.Bytes(), nil
}
