package models

import "time"

// ProcessedSession records a checkout session whose confirmation email went out.
// The primary key on session_id is the cross-instance uniqueness guarantee.
type ProcessedSession struct {
	SessionID   string    `gorm:"column:session_id;primaryKey"`
	ProcessedAt time.Time `gorm:"column:processed_at;not null"`
}

func (ProcessedSession) TableName() string {
	return "processed_sessions"
}
