package membership_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
)

func TestImport(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryClass)
	r := membership.NewResolver(db)
	ctx := context.Background()

	ann := newUser(t, db, "ann")
	ben := newUser(t, db, "ben")
	cat := newUser(t, db, "cat")

	_, err := r.JoinAs(ctx, g, cat.ID, "Member", models.MembershipSourceSignup)
	require.NoError(t, err)

	rows := []membership.ImportRow{
		{Line: 2, UserID: ann.ID},
		{Line: 3, Email: "ben@example.com", Role: "Reader"},
		{Line: 4, Email: "cat@example.com", Role: "GSI"},
		{Line: 5, Email: "nobody@example.com"},
		{Line: 6, UserID: ann.ID, Role: "Dean"},
	}

	result, err := r.Import(ctx, g, rows, false)
	require.NoError(t, err)

	_, err = uuid.Parse(result.Batch)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 5, result.Errors[0].Line)
	require.ErrorIs(t, result.Errors[0].Err, membership.ErrUnknownUser)
	require.ErrorIs(t, result.Errors[1].Err, membership.ErrRoleNotFound)

	m, err := r.ActiveMembership(ctx, g.ID, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reader", m.Role.Name)
	assert.Equal(t, models.MembershipSourceImport, m.Source)
	assert.Equal(t, result.Batch, m.ImportBatch)

	m, err = r.ActiveMembership(ctx, g.ID, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Member", m.Role.Name)
}

func TestImportOverride(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryNonprofit)
	r := membership.NewResolver(db)
	ctx := context.Background()

	dan := newUser(t, db, "dan")

	_, err := r.JoinAs(ctx, g, dan.ID, "Member", models.MembershipSourceSignup)
	require.NoError(t, err)

	result, err := r.Import(ctx, g, []membership.ImportRow{{Line: 1, UserID: dan.ID, Role: "Board"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	m, err := r.ActiveMembership(ctx, g.ID, dan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Board", m.Role.Name)

	members, err := r.Members(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Owner", members[0].Role.Name)
	assert.Equal(t, "dan", members[1].User.Username)
}

func TestMembershipsOf(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryClass)
	r := membership.NewResolver(db)
	ctx := context.Background()

	eve := newUser(t, db, "eve")

	_, err := r.JoinAs(ctx, g, eve.ID, "GSI", models.MembershipSourceSignup)
	require.NoError(t, err)

	memberships, err := r.MembershipsOf(ctx, eve.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, g.URL, memberships[0].Group.URL)
	assert.Equal(t, "GSI", memberships[0].Role.Name)

	require.NoError(t, r.Leave(ctx, g, eve.ID))

	m, err := r.Member(ctx, g.ID, eve.ID)
	require.NoError(t, err)
	assert.False(t, m.IsActive)

	memberships, err = r.MembershipsOf(ctx, eve.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestRoles(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryNonprofit)
	r := membership.NewResolver(db)

	require.NoError(t, db.Model(&models.Role{}).
		Where("scope = ? AND owner_id = ? AND name = ?", models.ScopeGroup, g.ID, "Board").
		Update("is_active", false).Error)

	roles, err := r.Roles(context.Background(), models.ScopeGroup, g.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}

	assert.Equal(t, []string{"Owner", "Chair", "Volunteer", "Member"}, names)
}

func TestRoleChoices(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryClass)
	r := membership.NewResolver(db)
	ctx := context.Background()

	roles, err := r.RoleChoices(ctx, models.ScopeGroup, g.ID)
	require.NoError(t, err)
	assert.Nil(t, roles)

	setGroupSetting(t, db, g, catalog.SettingChooseRole, "", true)

	roles, err = r.RoleChoices(ctx, models.ScopeGroup, g.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 6)
	assert.Equal(t, "Owner", roles[0].Name)
}

func TestSignupsOf(t *testing.T) {
	db := newTestDB(t)
	g := newGroup(t, db, models.CategoryClass)
	e := newEvent(t, db, g)
	r := membership.NewResolver(db)
	ctx := context.Background()

	ann := newUser(t, db, "ann")
	_, err := r.Signup(ctx, g, e, ann, membership.Selection{})
	require.NoError(t, err)

	signups, err := r.SignupsOf(ctx, g.ID, ann.ID)
	require.NoError(t, err)
	require.Len(t, signups, 1)
	assert.Equal(t, e.Name, signups[0].Event.Name)
	assert.Equal(t, "Volunteer", signups[0].Role.Name)

	signups, err = r.SignupsOf(ctx, g.ID+1, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, signups)
}
