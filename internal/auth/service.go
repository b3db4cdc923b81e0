package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/db/models"
)

const whereActivePair = "%s = ? AND user_id = ? AND is_active = ?"

// Service answers authorization questions about users in groups and events.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GroupRole returns the role of the user's active membership in the group.
func (s *Service) GroupRole(ctx context.Context, groupID, userID uint64) (*models.Role, error) {
	var m models.Membership

	err := s.db.WithContext(ctx).Preload("Role").
		Where(fmt.Sprintf(whereActivePair, "group_id"), groupID, userID, true).
		First(&m).Error
	if err != nil {
		return nil, notActive(err)
	}

	return &m.Role, nil
}

// EventRole returns the role of the user's active signup for the event.
func (s *Service) EventRole(ctx context.Context, eventID, userID uint64) (*models.Role, error) {
	var signup models.Signup

	err := s.db.WithContext(ctx).Preload("Role").
		Where(fmt.Sprintf(whereActivePair, "event_id"), eventID, userID, true).
		First(&signup).Error
	if err != nil {
		return nil, notActive(err)
	}

	return &signup.Role, nil
}

// Can checks whether the user holds perm in the group or event identified by scope and ownerID.
// A user without an active role in the scope holds no permission.
func (s *Service) Can(
	ctx context.Context,
	scope models.Scope,
	ownerID, userID uint64,
	perm Permission,
) (bool, error) {
	role, err := s.role(ctx, scope, ownerID, userID)
	if err != nil || role == nil {
		return false, err
	}

	return HasPermission(role, perm), nil
}

// GrantedPermissions returns the permissions the user holds in a group or event.
func (s *Service) GrantedPermissions(
	ctx context.Context,
	scope models.Scope,
	ownerID, userID uint64,
) ([]Permission, error) {
	granted := make([]Permission, 0)

	role, err := s.role(ctx, scope, ownerID, userID)
	if err != nil || role == nil {
		return granted, err
	}

	for _, perm := range Permissions(scope) {
		if HasPermission(role, perm) {
			granted = append(granted, perm)
		}
	}

	return granted, nil
}

// role returns nil without error when the user has no active role in the scope.
func (s *Service) role(ctx context.Context, scope models.Scope, ownerID, userID uint64) (*models.Role, error) {
	var (
		role *models.Role
		err  error
	)

	switch scope {
	case models.ScopeGroup:
		role, err = s.GroupRole(ctx, ownerID, userID)
	case models.ScopeEvent:
		role, err = s.EventRole(ctx, ownerID, userID)
	default:
		return nil, nil
	}

	if errors.Is(err, ErrNoActiveRole) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up %s role: %w", scope, err)
	}

	return role, nil
}

func notActive(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoActiveRole
	}

	return err
}
