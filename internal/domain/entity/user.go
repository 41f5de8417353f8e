// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// WeekStart is the user's preferred first day of the calendar week.
type WeekStart string

const (
	WeekStartSunday WeekStart = "sunday"
	WeekStartMonday WeekStart = "monday"
)

// EmploymentCategory determines which subset of statutory holidays applies
// to the user.
type EmploymentCategory string

const (
	EmploymentStandard EmploymentCategory = "standard"
	EmploymentFederal  EmploymentCategory = "federal"
	EmploymentRetail   EmploymentCategory = "retail"
)

// User is the core entity of the system: an authenticated person with a
// vacation allowance. A record is created on first successful sign-in and
// mutated only through settings updates; it is never hard-deleted.
type User struct {
	ID              uuid.UUID          // The unique identifier for the user.
	ProviderSubject string             // The identity provider's stable subject for this user.
	Email           string             // The user's primary contact email.
	Name            string             // The user's display name.
	AllowanceDays   int                // Vacation allowance in days per year.
	Province        string             // Two-letter province code driving holiday applicability.
	Employment      EmploymentCategory // Employment category driving holiday applicability.
	WeekStart       WeekStart          // First day of the week in calendar views.
	CalendarSync    bool               // Whether bookings should be mirrored to the external calendar.
	CreatedAt       time.Time          // Timestamp of when this user account was created.
	UpdatedAt       time.Time          // Timestamp of the last modification to this user's data.
}

// Settings is the mutable slice of a User exposed through the settings routes.
type Settings struct {
	AllowanceDays int
	Province      string
	Employment    EmploymentCategory
	WeekStart     WeekStart
	CalendarSync  bool
}

// ApplySettings copies the settings fields onto the user.
func (u *User) ApplySettings(s Settings) {
	u.AllowanceDays = s.AllowanceDays
	u.Province = s.Province
	u.Employment = s.Employment
	u.WeekStart = s.WeekStart
	u.CalendarSync = s.CalendarSync
}
