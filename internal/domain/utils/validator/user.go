package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

func Name(name string) bool {
	name = strings.TrimSpace(name)
	return utf8.RuneCountInString(name) >= 2 && utf8.RuneCountInString(name) <= 100
}

// Email checks the address format and, when domains is not empty, that it belongs
// to one of them.
func Email(email string, domains []string) bool {
	return emailFormat(email) && emailDomain(email, domains)
}

func emailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func emailDomain(email string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	email = strings.ToLower(email)
	for _, domain := range domains {
		if strings.HasSuffix(email, "@"+strings.ToLower(strings.TrimPrefix(domain, "@"))) {
			return true
		}
	}
	return false
}

func Password(password string) bool {
	return utf8.RuneCountInString(password) >= 8 && len(password) <= 72
}
