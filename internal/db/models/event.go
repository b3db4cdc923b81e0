package models

import "time"

// Event belongs to a group and owns event roles, event settings, signups and check-ins.
type Event struct {
	ID          uint64 `gorm:"primaryKey"`
	GroupID     uint64 `gorm:"not null;index"`
	Group       Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	StartsAt    time.Time
	EndsAt      time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the database table name for the Event model.
func (Event) TableName() string {
	return "events"
}
