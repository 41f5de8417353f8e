package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks whether a booking has been mirrored to the external
// calendar.
type SyncStatus string

const (
	SyncStatusNone    SyncStatus = "none"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

// HalfDayPortion marks which half of a single day a half-day booking covers.
type HalfDayPortion string

const (
	HalfDayMorning   HalfDayPortion = "morning"
	HalfDayAfternoon HalfDayPortion = "afternoon"
)

// VacationBooking is a span of booked vacation days. A booking always belongs
// to exactly one user, its date range is well-formed (start <= end), and once
// synced to the external calendar the range is immutable unless re-synced.
type VacationBooking struct {
	ID              uuid.UUID      // The unique identifier for this booking.
	UserID          uuid.UUID      // The owning user; only the owner may delete the booking.
	StartDate       time.Time      // First day off, date precision.
	EndDate         time.Time      // Last day off, inclusive, date precision.
	Note            string         // Optional free-text note.
	HalfDay         bool           // True when the booking covers half of a single day.
	HalfDayPortion  HalfDayPortion // Which half, when HalfDay is set.
	ExternalEventID string         // Event id in the external calendar, empty until synced.
	SyncStatus      SyncStatus     // Current calendar sync state.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Days returns the number of vacation days the booking consumes.
// A half-day booking counts as 0.5 regardless of the range.
func (b *VacationBooking) Days() float64 {
	if b.HalfDay {
		return 0.5
	}

	return b.EndDate.Sub(b.StartDate).Hours()/24 + 1
}

// RangeValid reports whether the date range is well-formed.
func (b *VacationBooking) RangeValid() bool {
	return !b.EndDate.Before(b.StartDate)
}

// Synced reports whether the booking is currently mirrored to the external
// calendar.
func (b *VacationBooking) Synced() bool {
	return b.SyncStatus == SyncStatusSynced && b.ExternalEventID != ""
}
