package validator

import (
	"unicode/utf8"
)

func ClubName(name string) bool {
	return utf8.RuneCountInString(name) >= 3 && utf8.RuneCountInString(name) <= 60
}

func ClubDescription(description string) bool {
	return utf8.RuneCountInString(description) <= 2000
}

func AnnouncementTitle(title string) bool {
	return utf8.RuneCountInString(title) >= 1 && utf8.RuneCountInString(title) <= 120
}

func AnnouncementMessage(text string) bool {
	return utf8.RuneCountInString(text) >= 1 && utf8.RuneCountInString(text) <= 5000
}
