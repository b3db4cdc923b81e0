// Package models contains database model definitions.
package models

import "time"

// SettingOwner is the kind of record a setting is attached to.
type SettingOwner string

const (
	// SettingOwnerGroup attaches a setting to a group.
	SettingOwnerGroup SettingOwner = "group"
	// SettingOwnerEvent attaches a setting to an event.
	SettingOwnerEvent SettingOwner = "event"
	// SettingOwnerUser attaches a setting to a user.
	SettingOwnerUser SettingOwner = "user"
)

// SettingType tells the settings form how to render the value.
type SettingType string

const (
	// SettingTypeString is a free text value.
	SettingTypeString SettingType = "string"
	// SettingTypeBoolean only uses IsActive; Value is ignored.
	SettingTypeBoolean SettingType = "boolean"
	// SettingTypeSelect holds a role name.
	SettingTypeSelect SettingType = "select"
)

// Setting is one owner-scoped configuration entry, seeded from the catalog.
type Setting struct {
	ID          uint64       `gorm:"primaryKey"`
	OwnerType   SettingOwner `gorm:"type:varchar(10);not null;uniqueIndex:idx_setting_owner_name"`
	OwnerID     uint64       `gorm:"not null;uniqueIndex:idx_setting_owner_name"`
	Name        string       `gorm:"size:100;not null;uniqueIndex:idx_setting_owner_name;index"`
	Label       string       `gorm:"size:200"`
	Description string       `gorm:"type:text"`
	Value       string       `gorm:"type:text"`
	Type        SettingType  `gorm:"type:varchar(10);not null;default:'string'"`
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
