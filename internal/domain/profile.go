package domain

import (
	"strings"
	"time"
)

type Profile struct {
	ID          string     `json:"id"`
	FullName    *string    `json:"full_name"`
	PhoneNumber *string    `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	BirthDate   *time.Time
}

func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.PhoneNumber == nil && u.BirthDate == nil
}

func (u *ProfileUpdate) Validate(now time.Time) error {
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if len(name) > 200 {
			return NewValidationError("full_name", "is too long")
		}
		u.FullName = &name
	}
	if u.PhoneNumber != nil {
		phone := strings.TrimSpace(*u.PhoneNumber)
		if phone != "" && !isPhone(phone) {
			return NewValidationError("phone_number", "must contain 7 to 15 digits")
		}
		u.PhoneNumber = &phone
	}
	if u.BirthDate != nil && u.BirthDate.After(now) {
		return NewValidationError("birth_date", "must not be in the future")
	}
	return nil
}

func (p *Profile) Apply(u ProfileUpdate, now time.Time) {
	if u.FullName != nil {
		p.FullName = u.FullName
	}
	if u.PhoneNumber != nil {
		p.PhoneNumber = u.PhoneNumber
	}
	if u.BirthDate != nil {
		p.BirthDate = u.BirthDate
	}
	p.UpdatedAt = now
}

func isPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
