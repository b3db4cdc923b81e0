package membership

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
)

// ActiveMembership returns the active membership of user in group with its role.
func (r *Resolver) ActiveMembership(ctx context.Context, groupID, userID uint64) (*models.Membership, error) {
	var m models.Membership

	err := r.db.WithContext(ctx).Preload("Role").
		Where(whereActiveMembership, groupID, userID, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotActive
	}

	if err != nil {
		return nil, err
	}

	return &m, nil
}

// ActiveSignup returns the active signup of user for event with its role.
func (r *Resolver) ActiveSignup(ctx context.Context, eventID, userID uint64) (*models.Signup, error) {
	var s models.Signup

	err := r.db.WithContext(ctx).Preload("Role").
		Where(whereActiveSignup, eventID, userID, true).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotActive
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Members lists the active memberships of a group, highest role first.
func (r *Resolver) Members(ctx context.Context, groupID uint64) ([]models.Membership, error) {
	var members []models.Membership

	err := r.db.WithContext(ctx).Preload("Role").Preload("User").
		Joins("JOIN roles ON roles.id = memberships.role_id").
		Where("memberships.group_id = ? AND memberships.is_active = ?", groupID, true).
		Order("roles.position ASC, memberships.id ASC").
		Find(&members).Error

	return members, err
}

// Member returns the latest membership, active or not, of user in group.
func (r *Resolver) Member(ctx context.Context, groupID, userID uint64) (*models.Membership, error) {
	var m models.Membership

	err := r.db.WithContext(ctx).Preload("Role").Preload("User").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotActive
	}

	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Signups lists the active signups of an event, waitlisted ones last.
func (r *Resolver) Signups(ctx context.Context, eventID uint64) ([]models.Signup, error) {
	var signups []models.Signup

	err := r.db.WithContext(ctx).Preload("Role").Preload("User").
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("is_waitlisted ASC, id ASC").
		Find(&signups).Error

	return signups, err
}

// MembershipsOf lists the active memberships of a user with their groups, for the dashboard.
func (r *Resolver) MembershipsOf(ctx context.Context, userID uint64) ([]models.Membership, error) {
	var memberships []models.Membership

	err := r.db.WithContext(ctx).Preload("Group").Preload("Role").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("group_id ASC").
		Find(&memberships).Error

	return memberships, err
}

// Roles lists the active roles of a group or event in catalog order.
func (r *Resolver) Roles(ctx context.Context, scope models.Scope, ownerID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := r.db.WithContext(ctx).
		Where("scope = ? AND owner_id = ? AND is_active = ?", scope, ownerID, true).
		Order("position ASC").
		Find(&roles).Error

	return roles, err
}

// RoleChoices returns the roles a user may pick when joining a group or signing up for an event.
// It returns nil when choose_role is not active and the role is assigned instead.
func (r *Resolver) RoleChoices(ctx context.Context, scope models.Scope, ownerID uint64) ([]models.Role, error) {
	owner := models.SettingOwnerGroup
	if scope == models.ScopeEvent {
		owner = models.SettingOwnerEvent
	}

	choose, err := setting.Get(r.db.WithContext(ctx), owner, ownerID, catalog.SettingChooseRole)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if !choose.IsActive {
		return nil, nil
	}

	return r.Roles(ctx, scope, ownerID)
}

// SignupsOf lists the active signups of a user for events of a group.
func (r *Resolver) SignupsOf(ctx context.Context, groupID, userID uint64) ([]models.Signup, error) {
	var signups []models.Signup

	err := r.db.WithContext(ctx).Preload("Event").Preload("Role").
		Joins("JOIN events ON events.id = signups.event_id").
		Where("events.group_id = ? AND signups.user_id = ? AND signups.is_active = ?", groupID, userID, true).
		Order("events.starts_at DESC, signups.id DESC").
		Find(&signups).Error

	return signups, err
}
