package event

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/checkin"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/web/webtest"
)

type fixture struct {
	env    *webtest.Env
	owner  *models.User
	member *models.User
	other  *models.User
	group  *models.Group
	event  *models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	env := webtest.New(t)

	var s Service
	require.NoError(t, s.Init(env.App, env.Deps))

	f := &fixture{
		env:    env,
		owner:  env.User(t, "owner"),
		member: env.User(t, "member"),
		other:  env.User(t, "other"),
	}
	f.group = env.Group(t, f.owner, "food", models.CategoryNonprofit)
	f.event = env.Event(t, f.group, f.owner, "Pantry")

	_, err := env.Deps.Resolver.Join(context.Background(), f.group, f.member, membership.Selection{})
	require.NoError(t, err)

	return f
}

func (f *fixture) path(suffix string) string {
	return fmt.Sprintf("/g/%s/e/%d%s", f.group.URL, f.event.ID, suffix)
}

func (f *fixture) signup(t *testing.T, user *models.User) {
	t.Helper()

	_, err := f.env.Deps.Resolver.Signup(context.Background(), f.group, f.event, user, membership.Selection{})
	require.NoError(t, err)
}

func TestFormTimes(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{name: "ordered", form: Form{Start: "2026-03-01T10:00", End: "2026-03-01T12:00"}},
		{name: "same time", form: Form{Start: "2026-03-01T10:00", End: "2026-03-01T10:00"}},
		{name: "reversed", form: Form{Start: "2026-03-01T12:00", End: "2026-03-01T10:00"}, wantErr: ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.form.Times()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.False(t, end.Before(start))
		})
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	newPath := "/g/food/e/new"

	resp := f.env.Get(t, newPath, f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Get(t, newPath, f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, templateNew, f.env.Views.Template())

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{
			name:       "missing name",
			form:       url.Values{"start": {"2026-03-01T10:00"}, "end": {"2026-03-01T12:00"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad time",
			form:       url.Values{"name": {"Drive"}, "start": {"tomorrow"}, "end": {"2026-03-01T12:00"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ends before start",
			form:       url.Values{"name": {"Drive"}, "start": {"2026-03-01T12:00"}, "end": {"2026-03-01T10:00"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "created",
			form:       url.Values{"name": {"Drive"}, "start": {"2026-03-01T10:00"}, "end": {"2026-03-01T12:00"}},
			wantStatus: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.Post(t, newPath, tt.form, f.owner)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	var event models.Event
	require.NoError(t, f.env.DB.Where("name = ?", "Drive").First(&event).Error)
	assert.Equal(t, f.group.ID, event.GroupID)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), event.StartsAt.UTC())

	signup, err := f.env.Deps.Resolver.ActiveSignup(context.Background(), event.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.RoleOwner, signup.Role.Name)
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	f.signup(t, f.member)

	resp := f.env.Get(t, f.path(""), f.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, templateHome, f.env.Views.Template())

	data := f.env.Views.Data()
	mine, ok := data["Signup"].(*models.Signup)
	require.True(t, ok)
	assert.Equal(t, "Volunteer", mine.Role.Name)

	signups, ok := data["Signups"].([]models.Signup)
	require.True(t, ok)
	assert.Len(t, signups, 2)

	resp = f.env.Get(t, "/g/food/e/999", f.member)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	other := f.env.Group(t, f.other, "club", models.CategoryClass)
	resp = f.env.Get(t, fmt.Sprintf("/g/%s/e/%d", other.URL, f.event.ID), f.other)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEdit(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/edit"), f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	form := url.Values{"name": {"Big Pantry"}, "start": {"2026-04-01T09:00"}, "end": {"2026-04-01T17:00"}}
	resp = f.env.Post(t, f.path("/edit"), form, f.owner)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var event models.Event
	require.NoError(t, f.env.DB.First(&event, f.event.ID).Error)
	assert.Equal(t, "Big Pantry", event.Name)
	assert.Equal(t, 17, event.EndsAt.UTC().Hour())
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/settings"), f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	role, err := setting.Get(f.env.DB, models.SettingOwnerEvent, f.event.ID, catalog.SettingRole)
	require.NoError(t, err)

	resp = f.env.Post(t, f.path("/settings"), url.Values{
		fmt.Sprintf("value_%d", role.ID):  {"Authorizer"},
		fmt.Sprintf("active_%d", role.ID): {"on"},
	}, f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.Post(t, f.path("/settings"), url.Values{
		fmt.Sprintf("value_%d", role.ID):  {"Chairperson"},
		fmt.Sprintf("active_%d", role.ID): {"on"},
	}, f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	role, err = setting.Get(f.env.DB, models.SettingOwnerEvent, f.event.ID, catalog.SettingRole)
	require.NoError(t, err)
	assert.Equal(t, "Chairperson", role.Value)
}

func TestSignup(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Post(t, f.path("/signup"), nil, f.other)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Post(t, f.path("/signup"), nil, f.member)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = f.env.Post(t, f.path("/signup"), nil, f.member)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, err := f.env.Deps.Resolver.ActiveSignup(context.Background(), f.event.ID, f.member.ID)
	require.NoError(t, err)
}

func TestSignupDisabled(t *testing.T) {
	f := newFixture(t)

	_, err := setting.Set(f.env.DB, models.SettingOwnerEvent, f.event.ID, catalog.SettingEnableSignups, "", false)
	require.NoError(t, err)

	resp := f.env.Post(t, f.path("/signup"), nil, f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), membership.ErrSignupsDisabled.Error())
}

func TestSignupAgainAfterSignupsClosed(t *testing.T) {
	f := newFixture(t)
	f.signup(t, f.member)

	_, err := setting.Set(f.env.DB, models.SettingOwnerEvent, f.event.ID, catalog.SettingEnableSignups, "", false)
	require.NoError(t, err)

	resp := f.env.Post(t, f.path("/signup"), nil, f.member)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	f.signup(t, f.member)

	resp := f.env.Post(t, f.path("/leave"), nil, f.member)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/g/food", resp.Header.Get(fiber.HeaderLocation))

	resp = f.env.Post(t, f.path("/leave"), nil, f.member)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.signup(t, f.member)

	_, err := setting.Set(f.env.DB, models.SettingOwnerEvent, f.event.ID, catalog.SettingEnableLeave, "", false)
	require.NoError(t, err)

	resp = f.env.Post(t, f.path("/leave"), nil, f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/authorize"), f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Get(t, f.path("/authorize"), f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", f.env.Views.Data()["Code"])

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantLen    int
	}{
		{name: "missing seed", form: url.Values{}, wantStatus: http.StatusBadRequest},
		{name: "too long", form: url.Values{"seed": {"x"}, "length": {"40"}}, wantStatus: http.StatusBadRequest},
		{name: "not a number", form: url.Values{"seed": {"x"}, "length": {"six"}}, wantStatus: http.StatusBadRequest},
		{name: "default length", form: url.Values{"seed": {"open sesame"}}, wantStatus: http.StatusOK, wantLen: 6},
		{name: "custom length", form: url.Values{"seed": {"open sesame"}, "length": {"10"}}, wantStatus: http.StatusOK, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.Post(t, f.path("/authorize"), tt.form, f.owner)
			require.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantLen > 0 {
				code, ok := f.env.Views.Data()["Code"].(string)
				require.True(t, ok)
				assert.Len(t, code, tt.wantLen)
			}
		})
	}
}

func TestCheckin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.env.Deps.Issuer.Issue(ctx, f.owner.ID, "open sesame", 6)
	require.NoError(t, err)

	resp := f.env.Post(t, f.path("/checkin"), url.Values{"code": {code}}, f.member)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), checkin.ErrNotSignedUp.Error())

	f.signup(t, f.member)

	resp = f.env.Post(t, f.path("/checkin"), url.Values{"code": {"nope"}}, f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Post(t, f.path("/checkin"), url.Values{"code": {" " + code + " "}}, f.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, f.env.Views.Data()["CheckedIn"])
	assert.Equal(t, int64(1), f.env.Views.Data()["Count"])

	resp = f.env.Post(t, f.path("/checkin"), url.Values{"code": {code}}, f.member)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), checkin.ErrCheckinLimit.Error())
}
