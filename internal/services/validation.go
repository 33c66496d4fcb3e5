package services

import (
	"net/mail"
	"strings"

	"github.com/alirezazamanidev/project-microservice/domain"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return domain.ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return domain.ErrInvalidEmail
	}
	return nil
}

// validateCode checks the code is exactly length ASCII digits. Leading zeros are kept.
func validateCode(code string, length int) error {
	if len(code) != length {
		return domain.ErrInvalidOTPFormat
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return domain.ErrInvalidOTPFormat
		}
	}
	return nil
}
