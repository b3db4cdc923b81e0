package models

import "time"

// Scope tells whether a role or setting belongs to a group or to an event.
type Scope string

const (
	// ScopeGroup marks group roles.
	ScopeGroup Scope = "group"
	// ScopeEvent marks event roles.
	ScopeEvent Scope = "event"
)

// Role is a named set of permissions inside one group or one event.
// Roles are seeded from the catalog and deactivated instead of deleted.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint64 `gorm:"primaryKey"`
	// Scope and OwnerID identify the group or event the role belongs to.
	Scope   Scope  `gorm:"type:varchar(10);not null;uniqueIndex:idx_role_owner_name"`
	OwnerID uint64 `gorm:"not null;uniqueIndex:idx_role_owner_name"`
	// Name is unique within its owner.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_role_owner_name"`
	// Permissions is "*" or a comma separated permission list, empty means none.
	Permissions string `gorm:"size:255"`
	// Position keeps catalog order; the highest position is the fallback role.
	Position int
	// IsActive is false for removed roles; memberships may still reference them.
	IsActive bool
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
