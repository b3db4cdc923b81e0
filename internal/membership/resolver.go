package membership

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/whitelist"
)

const (
	whereActiveMembership = "group_id = ? AND user_id = ? AND is_active = ?"
	whereActiveSignup     = "event_id = ? AND user_id = ? AND is_active = ?"
)

// Selection is the role picked on a signup form. A zero RoleID means nothing was picked.
type Selection struct {
	RoleID uint64
}

// Resolver creates and ends memberships and signups.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver on db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// WithTx returns a resolver that runs inside tx, so callers can compose it with other writes.
func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	return &Resolver{db: tx}
}

// Join makes user an active member of group, with the role chosen by whitelist, selection or
// the group's role setting.
func (r *Resolver) Join(
	ctx context.Context,
	group *models.Group,
	user *models.User,
	sel Selection,
) (*models.Membership, error) {
	var m *models.Membership

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNoActive(tx, &models.Membership{}, whereActiveMembership, group.ID, user.ID); err != nil {
			return err
		}

		role, err := groupRoleFor(tx, group, user, sel)
		if err != nil {
			return err
		}

		m = models.NewActiveMembership(group.ID, user.ID, role.ID, models.MembershipSourceSignup)

		return create(tx, m)
	})
	if err != nil {
		return nil, err
	}

	metrics.Memberships.WithLabelValues(string(m.Source)).Inc()

	return m, nil
}

// JoinAs makes a user an active member of group with the named group role. It is used for the
// group creator and for imports, where no role selection takes place.
func (r *Resolver) JoinAs(
	ctx context.Context,
	group *models.Group,
	userID uint64,
	roleName string,
	source models.MembershipSource,
) (*models.Membership, error) {
	var m *models.Membership

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNoActive(tx, &models.Membership{}, whereActiveMembership, group.ID, userID); err != nil {
			return err
		}

		role, err := roleByName(tx, models.ScopeGroup, group.ID, roleName)
		if err != nil {
			return err
		}

		m = models.NewActiveMembership(group.ID, userID, role.ID, source)

		return create(tx, m)
	})
	if err != nil {
		return nil, err
	}

	metrics.Memberships.WithLabelValues(string(source)).Inc()

	return m, nil
}

// Signup makes user an active participant of event. The event's enable_signups, choose_role, role
// and auto_waitlist settings apply; whitelists only apply to groups. A user who is already signed
// up gets ErrDuplicateActiveRecord even when signups are closed.
func (r *Resolver) Signup(
	ctx context.Context,
	group *models.Group,
	event *models.Event,
	user *models.User,
	sel Selection,
) (*models.Signup, error) {
	if event.GroupID != group.ID {
		return nil, ErrEventNotInGroup
	}

	fallback, err := catalog.FallbackEventRole(group.Category)
	if err != nil {
		return nil, err
	}

	var signup *models.Signup

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errActive := ensureNoActive(tx, &models.Signup{}, whereActiveSignup, event.ID, user.ID); errActive != nil {
			return errActive
		}

		enabled, errSetting := eventFlag(tx, event.ID, catalog.SettingEnableSignups)
		if errSetting != nil {
			return errSetting
		}

		if !enabled {
			return ErrSignupsDisabled
		}

		role, errRole := scopeRoleFor(tx, models.ScopeEvent, event.ID, models.SettingOwnerEvent, fallback, sel)
		if errRole != nil {
			return errRole
		}

		waitlisted, errSetting := eventFlag(tx, event.ID, catalog.SettingAutoWaitlist)
		if errSetting != nil {
			return errSetting
		}

		signup = models.NewActiveSignup(event.ID, user.ID, role.ID, waitlisted)

		return create(tx, signup)
	})
	if err != nil {
		return nil, err
	}

	metrics.Signups.WithLabelValues(strconv.FormatBool(signup.IsWaitlisted)).Inc()

	return signup, nil
}

// SignupAs signs a user up for event with the named event role, bypassing event settings.
// It is used to make the creator of an event its owner.
func (r *Resolver) SignupAs(
	ctx context.Context,
	event *models.Event,
	userID uint64,
	roleName string,
) (*models.Signup, error) {
	var signup *models.Signup

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNoActive(tx, &models.Signup{}, whereActiveSignup, event.ID, userID); err != nil {
			return err
		}

		role, err := roleByName(tx, models.ScopeEvent, event.ID, roleName)
		if err != nil {
			return err
		}

		signup = models.NewActiveSignup(event.ID, userID, role.ID, false)

		return create(tx, signup)
	})
	if err != nil {
		return nil, err
	}

	metrics.Signups.WithLabelValues(strconv.FormatBool(false)).Inc()

	return signup, nil
}

// Leave ends the active membership of user in group.
func (r *Resolver) Leave(ctx context.Context, group *models.Group, userID uint64) error {
	res := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where(whereActiveMembership, group.ID, userID, true).
		Updates(models.Deactivation())
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotActive
	}

	metrics.Leaves.WithLabelValues(string(models.ScopeGroup)).Inc()

	return nil
}

// LeaveEvent ends the active signup of user for event, if the event allows leaving.
func (r *Resolver) LeaveEvent(ctx context.Context, event *models.Event, userID uint64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enabled, err := eventFlag(tx, event.ID, catalog.SettingEnableLeave)
		if err != nil {
			return err
		}

		if !enabled {
			return ErrLeaveDisabled
		}

		res := tx.Model(&models.Signup{}).
			Where(whereActiveSignup, event.ID, userID, true).
			Updates(models.Deactivation())
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotActive
		}

		return nil
	})
	if err != nil {
		return err
	}

	metrics.Leaves.WithLabelValues(string(models.ScopeEvent)).Inc()

	return nil
}

// ProcessWaitlist moves every active waitlisted signup of event off the waitlist and returns
// how many were promoted.
func (r *Resolver) ProcessWaitlist(ctx context.Context, event *models.Event) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Signup{}).
		Where("event_id = ? AND is_active = ? AND is_waitlisted = ?", event.ID, true, true).
		Update("is_waitlisted", false)

	return res.RowsAffected, res.Error
}

// groupRoleFor applies the whitelist of the group before the generic scope rules.
func groupRoleFor(tx *gorm.DB, group *models.Group, user *models.User, sel Selection) (*models.Role, error) {
	fallback, err := catalog.FallbackGroupRole(group.Category)
	if err != nil {
		return nil, err
	}

	wl, err := setting.Get(tx, models.SettingOwnerGroup, group.ID, catalog.SettingWhitelist)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, err
	}

	if wl != nil && wl.IsActive {
		if position, ok := whitelist.Lookup(whitelist.Parse(wl.Value), user.Email); ok {
			if position == "" {
				position = fallback
			}

			return roleByName(tx, models.ScopeGroup, group.ID, position)
		}
	}

	return scopeRoleFor(tx, models.ScopeGroup, group.ID, models.SettingOwnerGroup, fallback, sel)
}

// scopeRoleFor applies choose_role and the role setting of a group or event. An inactive or
// missing role setting means the fallback role.
func scopeRoleFor(
	tx *gorm.DB,
	scope models.Scope,
	ownerID uint64,
	owner models.SettingOwner,
	fallback string,
	sel Selection,
) (*models.Role, error) {
	choose, err := setting.Get(tx, owner, ownerID, catalog.SettingChooseRole)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, err
	}

	if choose != nil && choose.IsActive {
		return selectedRole(tx, scope, ownerID, sel)
	}

	name := fallback

	def, err := setting.Get(tx, owner, ownerID, catalog.SettingRole)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, err
	}

	if def != nil && def.IsActive && def.Value != "" {
		name = def.Value
	}

	return roleByName(tx, scope, ownerID, name)
}

func selectedRole(tx *gorm.DB, scope models.Scope, ownerID uint64, sel Selection) (*models.Role, error) {
	if sel.RoleID == 0 {
		return nil, ErrRoleRequired
	}

	var role models.Role

	err := tx.First(&role, sel.RoleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, err
	}

	if role.Scope != scope || role.OwnerID != ownerID {
		return nil, ErrUnauthorizedRoleChoice
	}

	if !role.IsActive {
		return nil, ErrRoleNotFound
	}

	return &role, nil
}

func roleByName(tx *gorm.DB, scope models.Scope, ownerID uint64, name string) (*models.Role, error) {
	var role models.Role

	err := tx.Where("scope = ? AND owner_id = ? AND name = ? AND is_active = ?", scope, ownerID, name, true).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}

	if err != nil {
		return nil, err
	}

	return &role, nil
}

// eventFlag reports whether the named event setting is active. Events without the setting use
// the catalog default.
func eventFlag(tx *gorm.DB, eventID uint64, name string) (bool, error) {
	s, err := setting.Get(tx, models.SettingOwnerEvent, eventID, name)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return catalog.EventSettings()[name].IsActive, nil
	}

	if err != nil {
		return false, err
	}

	return s.IsActive, nil
}

func ensureNoActive(tx *gorm.DB, model any, where string, ownerID, userID uint64) error {
	var count int64
	if err := tx.Model(model).Where(where, ownerID, userID, true).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrDuplicateActiveRecord
	}

	return nil
}

// create inserts an active row. The unique index on the active slot reports a concurrent
// duplicate that slipped past ensureNoActive.
func create(tx *gorm.DB, value any) error {
	err := tx.Omit("Group", "Event", "Role", "User").Create(value).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateActiveRecord
	}

	return err
}
