package models

import "time"

// MembershipSource records how a membership came to be.
type MembershipSource string

const (
	// MembershipSourceSignup is a self service join.
	MembershipSourceSignup MembershipSource = "signup"
	// MembershipSourceOwner is the creator of the group.
	MembershipSourceOwner MembershipSource = "owner"
	// MembershipSourceImport is a bulk import.
	MembershipSourceImport MembershipSource = "import"
)

// activeSlot is stored in ActiveSlot for active rows. Inactive rows store NULL,
// so the unique index admits any number of inactive rows but one active row per pair.
var activeSlot uint8 = 1

// Membership links a user to a group with exactly one group role.
type Membership struct {
	ID          uint64 `gorm:"primaryKey"`
	GroupID     uint64 `gorm:"not null;uniqueIndex:idx_membership_active"`
	Group       Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	UserID      uint64 `gorm:"not null;uniqueIndex:idx_membership_active;index"`
	ActiveSlot  *uint8 `gorm:"uniqueIndex:idx_membership_active"`
	RoleID      uint64 `gorm:"not null"`
	Role        Role   `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	User        User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	IsActive    bool
	Source      MembershipSource `gorm:"type:varchar(10);not null;default:'signup'"`
	ImportBatch string           `gorm:"size:36;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewActiveMembership returns an unsaved active membership.
func NewActiveMembership(groupID, userID, roleID uint64, source MembershipSource) *Membership {
	slot := activeSlot

	return &Membership{
		GroupID:    groupID,
		UserID:     userID,
		RoleID:     roleID,
		IsActive:   true,
		ActiveSlot: &slot,
		Source:     source,
	}
}

// Signup links a user to an event with exactly one event role.
type Signup struct {
	ID           uint64 `gorm:"primaryKey"`
	EventID      uint64 `gorm:"not null;uniqueIndex:idx_signup_active"`
	Event        Event  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	UserID       uint64 `gorm:"not null;uniqueIndex:idx_signup_active;index"`
	ActiveSlot   *uint8 `gorm:"uniqueIndex:idx_signup_active"`
	RoleID       uint64 `gorm:"not null"`
	Role         Role   `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	User         User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	IsActive     bool
	IsWaitlisted bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewActiveSignup returns an unsaved active signup.
func NewActiveSignup(eventID, userID, roleID uint64, waitlisted bool) *Signup {
	slot := activeSlot

	return &Signup{
		EventID:      eventID,
		UserID:       userID,
		RoleID:       roleID,
		IsActive:     true,
		ActiveSlot:   &slot,
		IsWaitlisted: waitlisted,
	}
}

// Deactivation is the column update that ends a membership or signup.
func Deactivation() map[string]interface{} {
	return map[string]interface{}{
		"is_active":   false,
		"active_slot": nil,
	}
}

// Checkin records that an authorizer admitted a user to an event.
type Checkin struct {
	ID           uint64 `gorm:"primaryKey"`
	EventID      uint64 `gorm:"not null;index:idx_checkin_event_user"`
	UserID       uint64 `gorm:"not null;index:idx_checkin_event_user"`
	AuthorizerID uint64 `gorm:"not null"`
	CreatedAt    time.Time
}
