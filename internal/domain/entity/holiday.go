package entity

import (
	"time"

	"github.com/google/uuid"
)

// HolidayScope distinguishes nationwide holidays from province-specific ones.
type HolidayScope string

const (
	HolidayScopeNational HolidayScope = "national"
	HolidayScopeProvince HolidayScope = "province"
)

// HolidayCategory decides which employment categories observe the holiday.
type HolidayCategory string

const (
	HolidayCategoryGeneral HolidayCategory = "general"
	HolidayCategoryFederal HolidayCategory = "federal"
	HolidayCategoryRetail  HolidayCategory = "retail"
)

// Holiday is read-only reference data describing a statutory holiday. It is
// not owned by any user.
type Holiday struct {
	ID       uuid.UUID
	Date     time.Time       // The observed date, date precision.
	Name     string          // Display name, e.g. "Labour Day".
	Scope    HolidayScope    // Nationwide or province-specific.
	Province string          // Province code; empty for national scope.
	Category HolidayCategory // Which employment categories observe it.
}

// AppliesTo reports whether the holiday is observed by a user in the given
// province with the given employment category.
func (h *Holiday) AppliesTo(province string, employment EmploymentCategory) bool {
	if h.Scope == HolidayScopeProvince && h.Province != province {
		return false
	}

	switch h.Category {
	case HolidayCategoryGeneral:
		return true
	case HolidayCategoryFederal:
		return employment == EmploymentFederal
	case HolidayCategoryRetail:
		return employment == EmploymentRetail
	default:
		return false
	}
}
