package model

import (
	"time"

	"github.com/google/uuid"
)

// CalendarTokenModel mirrors the 'calendar_tokens' table. The unique
// constraint on user_id keeps at most one credential row per user, so a
// repeated authorization replaces the previous grant.
type CalendarTokenModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Provider     string    `gorm:"type:varchar(20);not null"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	Scope        string    `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CalendarTokenModel) TableName() string {
	return "calendar_tokens"
}
