package validator

import (
	playground "github.com/go-playground/validator/v10"
)

// New returns a struct validator that knows the platform's field tags:
// club_name, club_description, event_title, event_description, event_location,
// announcement_title, announcement_message, person_name, password and
// campus_email (restricted to emailDomains when given).
func New(emailDomains []string) (*playground.Validate, error) {
	v := playground.New(playground.WithRequiredStructEnabled())

	stringRules := map[string]func(string) bool{
		"club_name":            ClubName,
		"club_description":     ClubDescription,
		"event_title":          EventTitle,
		"event_description":    EventDescription,
		"event_location":       EventLocation,
		"announcement_title":   AnnouncementTitle,
		"announcement_message": AnnouncementMessage,
		"person_name":          Name,
		"password":             Password,
		"campus_email": func(s string) bool {
			return Email(s, emailDomains)
		},
	}
	for tag, rule := range stringRules {
		rule := rule
		err := v.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
			return rule(fl.Field().String())
		})
		if err != nil {
			return nil, err
		}
	}

	return v, nil
}
