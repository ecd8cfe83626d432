package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const minPasswordLength = 6

func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > 200 {
		return fmt.Errorf("%w: project name must be at most 200 characters", ErrInvalidInput)
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// ValidateDeadline accepts an empty value or a YYYY-MM-DD date.
func ValidateDeadline(deadline string) error {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, deadline); err != nil {
		return fmt.Errorf("%w: deadline must be YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}

func ParseStatus(raw *string) (*InspectionStatus, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := InspectionStatus(strings.TrimSpace(*raw))
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: unknown inspection status %q", ErrInvalidInput, *raw)
	}
	return &s, nil
}

// Period selects reports for the pending actions view: "latest" or a YYYY-MM month.
type Period struct {
	Latest bool
	Month  time.Time
}

func ParsePeriod(raw string) (Period, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "latest" {
		return Period{Latest: true}, nil
	}
	month, err := time.Parse("2006-01", raw)
	if err != nil {
		return Period{}, fmt.Errorf("%w: period must be 'latest' or YYYY-MM", ErrInvalidInput)
	}
	return Period{Month: month}, nil
}

func (p Period) Contains(t time.Time) bool {
	if p.Latest {
		return true
	}
	y, m, _ := t.UTC().Date()
	return y == p.Month.Year() && m == p.Month.Month()
}
