package model

import (
	"time"

	"github.com/google/uuid"
)

// VacationBookingModel mirrors the 'vacation_bookings' table. Dates are
// stored as date columns; ranges are inclusive on both ends.
type VacationBookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate       time.Time `gorm:"type:date;not null;index"`
	EndDate         time.Time `gorm:"type:date;not null"`
	Note            string    `gorm:"type:text"`
	HalfDay         bool      `gorm:"not null;default:false"`
	HalfDayPortion  string    `gorm:"type:varchar(10)"`
	ExternalEventID string    `gorm:"type:varchar(255)"`
	SyncStatus      string    `gorm:"type:varchar(10);not null;default:'none'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (VacationBookingModel) TableName() string {
	return "vacation_bookings"
}
