package core

import "regexp"

const (
	MaxNameLength     = 50
	MinPasswordLength = 6
)

var emailRx = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Input validation runs before any store access, so malformed requests
// never reach persistence. Uniqueness is the store's job (ErrConflict);
// the two layers stay separate error kinds.

func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len([]rune(name)) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailRx.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateResetTarget enforces that a reset request addresses exactly one
// channel and returns which one.
func ValidateResetTarget(email, phone string) (OtpChannel, error) {
	switch {
	case email == "" && phone == "":
		return "", ErrIdentifierRequired
	case email != "" && phone != "":
		return "", ErrOneIdentifier
	case email != "":
		if err := ValidateEmail(email); err != nil {
			return "", err
		}
		return OtpChannelEmail, nil
	default:
		return OtpChannelPhone, nil
	}
}
