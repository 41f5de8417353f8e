package model

import (
	"time"

	"github.com/google/uuid"
)

// HolidayModel mirrors the 'holidays' table. Province is empty for national
// holidays.
type HolidayModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Date      time.Time `gorm:"type:date;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Scope     string    `gorm:"type:varchar(10);not null"`
	Province  string    `gorm:"type:varchar(2)"`
	Category  string    `gorm:"type:varchar(10);not null;default:'general'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (HolidayModel) TableName() string {
	return "holidays"
}
