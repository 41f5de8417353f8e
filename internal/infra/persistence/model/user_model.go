package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ProviderSubject string    `gorm:"type:varchar(255);unique;not null"`
	Email           string    `gorm:"type:varchar(255);not null"`
	Name            string    `gorm:"type:varchar(100)"`
	AllowanceDays   int       `gorm:"not null"`
	Province        string    `gorm:"type:varchar(2);not null"`
	Employment      string    `gorm:"type:varchar(20);not null"`
	WeekStart       string    `gorm:"type:varchar(10);not null;default:'sunday'"`
	CalendarSync    bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Bookings      []VacationBookingModel `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshTokenModel    `gorm:"foreignKey:UserID"`
	CalendarToken *CalendarTokenModel    `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
