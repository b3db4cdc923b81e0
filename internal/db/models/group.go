package models

import "time"

// Category selects the default role and setting catalog of a group. Immutable after creation.
type Category string

const (
	// CategoryClass is used by courses: professors, GSIs, readers and lab assistants.
	CategoryClass Category = "class"
	// CategoryNonprofit is used by volunteer organizations: chairs, board and volunteers.
	CategoryNonprofit Category = "nonprofit"
)

// Group is an organization. It owns group roles, group settings, memberships and events.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint64 `gorm:"primaryKey"`
	// Name is the display name of the group.
	Name string `gorm:"size:100;not null"`
	// URL is the slug used in routes (/g/:group).
	URL string `gorm:"size:100;not null;uniqueIndex"`
	// Description is shown on the group home page.
	Description string `gorm:"type:text"`
	// Category selects the catalog used when seeding roles and settings.
	Category Category `gorm:"type:varchar(20);not null"`
	// AccessToken guards the public whitelist endpoint.
	AccessToken string `gorm:"size:64;not null" json:"-"`
	// IsActive is false for archived groups.
	IsActive bool
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}
