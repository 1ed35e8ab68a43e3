package domain

import (
	"strings"

	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/timefmt"
)

// Profile is the signed-in user's account as the server reports it.
type Profile struct {
	ID                int64
	Username          string
	Email             string
	Timezone          string
	WorkingHoursStart timefmt.ClockTime
	WorkingHoursEnd   timefmt.ClockTime
}

// ProfileUpdate is a partial change to a profile. Nil fields are left as
// they are.
type ProfileUpdate struct {
	Username          *string
	Timezone          *string
	WorkingHoursStart *timefmt.ClockTime
	WorkingHoursEnd   *timefmt.ClockTime
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.Timezone == nil && u.WorkingHoursStart == nil && u.WorkingHoursEnd == nil
}

// Apply validates the update against current and returns the resulting
// profile.
func (u ProfileUpdate) Apply(current Profile) (Profile, error) {
	next := current

	if u.Username != nil {
		name, err := NewUsername(*u.Username)
		if err != nil {
			return Profile{}, &sharedDomain.ValidationError{Field: "username", Message: err.Error()}
		}
		next.Username = name.String()
	}
	if u.Timezone != nil {
		tz := strings.TrimSpace(*u.Timezone)
		if err := timefmt.ValidateZone(tz); err != nil {
			return Profile{}, &sharedDomain.ValidationError{Field: "timezone", Message: "unknown timezone " + tz}
		}
		next.Timezone = tz
	}
	if u.WorkingHoursStart != nil {
		next.WorkingHoursStart = *u.WorkingHoursStart
	}
	if u.WorkingHoursEnd != nil {
		next.WorkingHoursEnd = *u.WorkingHoursEnd
	}

	if !next.WorkingHoursStart.Before(next.WorkingHoursEnd) {
		return Profile{}, &sharedDomain.ValidationError{Field: "working_hours", Message: "working hours must start before they end"}
	}
	return next, nil
}
