package group

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/whitelist"
	"github.com/rosterd/rosterd/internal/web/webtest"
)

type fixture struct {
	env    *webtest.Env
	owner  *models.User
	member *models.User
	other  *models.User
	group  *models.Group
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
	f.group = env.Group(t, f.owner, "cs61a", models.CategoryClass)

	_, err := env.Deps.Resolver.Join(context.Background(), f.group, f.member, membership.Selection{})
	require.NoError(t, err)

	return f
}

func (f *fixture) path(suffix string) string {
	return "/g/" + f.group.URL + suffix
}

func (f *fixture) setGroupSetting(t *testing.T, name, value string, active bool) {
	t.Helper()

	_, err := setting.Set(f.env.DB, models.SettingOwnerGroup, f.group.ID, name, value, active)
	require.NoError(t, err)
}

func TestHome(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name          string
		user          *models.User
		wantStatus    int
		wantWhitelist bool
	}{
		{name: "owner sees whitelist", user: f.owner, wantStatus: http.StatusOK, wantWhitelist: true},
		{name: "member", user: f.member, wantStatus: http.StatusOK},
		{name: "outsider", user: f.other, wantStatus: http.StatusOK},
		{name: "anonymous", user: nil, wantStatus: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.Get(t, f.path(""), tt.user)
			require.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.user == nil {
				assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
				return
			}

			assert.Equal(t, templateHome, f.env.Views.Template())

			_, hasWhitelist := f.env.Views.Data()["Whitelist"]
			assert.Equal(t, tt.wantWhitelist, hasWhitelist)
		})
	}
}

func TestHomeUnknownGroup(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, "/g/nope", f.owner)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMembers(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/members"), f.other)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Get(t, f.path("/members"), f.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	members, ok := f.env.Views.Data()["Members"].([]models.Membership)
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, catalog.RoleOwner, members[0].Role.Name)
	assert.Equal(t, catalog.RoleMember, members[1].Role.Name)
}

func TestMember(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "member", path: fmt.Sprintf("/u/%d", f.member.ID), wantStatus: http.StatusOK},
		{name: "never joined", path: fmt.Sprintf("/u/%d", f.other.ID), wantStatus: http.StatusNotFound},
		{name: "invalid id", path: "/u/abc", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.Get(t, f.path(tt.path), f.owner)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestEdit(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/edit"), f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Post(t, f.path("/edit"), url.Values{"name": {""}}, f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.Post(t, f.path("/edit"), url.Values{"name": {"Structure"}, "description": {"SICP"}}, f.owner)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var g models.Group
	require.NoError(t, f.env.DB.First(&g, f.group.ID).Error)
	assert.Equal(t, "Structure", g.Name)
	assert.Equal(t, "SICP", g.Description)
	assert.Equal(t, "cs61a", g.URL)
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, f.path("/settings"), f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, templateSetting, f.env.Views.Template())

	choose, err := setting.Get(f.env.DB, models.SettingOwnerGroup, f.group.ID, catalog.SettingChooseRole)
	require.NoError(t, err)
	role, err := setting.Get(f.env.DB, models.SettingOwnerGroup, f.group.ID, catalog.SettingRole)
	require.NoError(t, err)

	form := url.Values{
		fmt.Sprintf("active_%d", choose.ID): {"on"},
		fmt.Sprintf("value_%d", role.ID):    {"Teapot"},
	}
	resp = f.env.Post(t, f.path("/settings"), form, f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form.Set(fmt.Sprintf("value_%d", role.ID), "Reader")
	resp = f.env.Post(t, f.path("/settings"), form, f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, f.env.Views.Data()["Saved"])

	choose, err = setting.Get(f.env.DB, models.SettingOwnerGroup, f.group.ID, catalog.SettingChooseRole)
	require.NoError(t, err)
	assert.True(t, choose.IsActive)

	role, err = setting.Get(f.env.DB, models.SettingOwnerGroup, f.group.ID, catalog.SettingRole)
	require.NoError(t, err)
	assert.Equal(t, "Reader", role.Value)
}

func TestSignup(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Post(t, f.path("/signup"), nil, f.other)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	m, err := f.env.Deps.Resolver.ActiveMembership(context.Background(), f.group.ID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.RoleMember, m.Role.Name)

	resp = f.env.Post(t, f.path("/signup"), nil, f.other)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestSignupChooseRole(t *testing.T) {
	f := newFixture(t)
	f.setGroupSetting(t, catalog.SettingChooseRole, "", true)

	resp := f.env.Get(t, f.path("/signup"), f.other)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	roles, ok := f.env.Views.Data()["Roles"].([]models.Role)
	require.True(t, ok)
	require.NotEmpty(t, roles)

	resp = f.env.Post(t, f.path("/signup"), url.Values{}, f.other)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.Post(t, f.path("/signup"), url.Values{"role_id": {"x"}}, f.other)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reader models.Role
	for _, r := range roles {
		if r.Name == "Reader" {
			reader = r
		}
	}
	require.NotZero(t, reader.ID)

	resp = f.env.Post(t, f.path("/signup"), url.Values{"role_id": {fmt.Sprint(reader.ID)}}, f.other)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	m, err := f.env.Deps.Resolver.ActiveMembership(context.Background(), f.group.ID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reader", m.Role.Name)
}

func TestSignupWhitelisted(t *testing.T) {
	f := newFixture(t)
	f.setGroupSetting(t, catalog.SettingWhitelist, f.other.Email+"(GSI)", true)

	resp := f.env.Post(t, f.path("/signup"), nil, f.other)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	m, err := f.env.Deps.Resolver.ActiveMembership(context.Background(), f.group.ID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, "GSI", m.Role.Name)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Post(t, f.path("/leave"), nil, f.member)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))

	resp = f.env.Post(t, f.path("/leave"), nil, f.member)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func upload(t *testing.T, path, filename, content string, override bool) *http.Request {
	t.Helper()

	var body bytes.Buffer

	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if override {
		require.NoError(t, w.WriteField("override", "on"))
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	return req
}

func TestImport(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Do(t, upload(t, f.path("/import"), "members.csv", "email\nother@example.com\n", false), f.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Do(t, upload(t, f.path("/import"), "members.pdf", "", false), f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	csv := "email,role\nother@example.com,Reader\nmember@example.com,GSI\nghost@example.com,\n"

	resp = f.env.Do(t, upload(t, f.path("/import"), "members.csv", csv, true), f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result, ok := f.env.Views.Data()["Result"].(*membership.ImportResult)
	require.True(t, ok)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Line)

	m, err := f.env.Deps.Resolver.ActiveMembership(context.Background(), f.group.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, "GSI", m.Role.Name)
}

func TestProcess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := f.env.Event(t, f.group, f.owner, "Lab 1")
	_, err := setting.Set(f.env.DB, models.SettingOwnerEvent, event.ID, catalog.SettingAutoWaitlist, "", true)
	require.NoError(t, err)

	_, err = f.env.Deps.Resolver.Signup(ctx, f.group, event, f.member, membership.Selection{})
	require.NoError(t, err)

	resp := f.env.Get(t, f.path("/process"), f.owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	counts, ok := f.env.Views.Data()["Waitlists"].(map[uint64]int64)
	require.True(t, ok)
	assert.Equal(t, int64(1), counts[event.ID])

	resp = f.env.Post(t, f.path("/process"), url.Values{}, f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.Post(t, f.path("/process"), url.Values{"event_id": {"999"}}, f.owner)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.Post(t, f.path("/process"), url.Values{"event_id": {fmt.Sprint(event.ID)}}, f.owner)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	signup, err := f.env.Deps.Resolver.ActiveSignup(ctx, event.ID, f.member.ID)
	require.NoError(t, err)
	assert.False(t, signup.IsWaitlisted)
}

func TestWhitelist(t *testing.T) {
	f := newFixture(t)
	f.setGroupSetting(t, catalog.SettingWhitelist, "a@example.com(GSI), b@example.com", true)

	resp := f.env.Get(t, f.path("/whitelist/wrong"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.Get(t, f.path("/whitelist/"+f.group.AccessToken), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body WhitelistResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []whitelist.Entry{
		{Email: "a@example.com", Position: "GSI"},
		{Email: "b@example.com", Position: catalog.RoleMember},
	}, body.Data)

	f.setGroupSetting(t, catalog.SettingWhitelist, "a@example.com(GSI), b@example.com", false)

	resp = f.env.Get(t, f.path("/whitelist/"+f.group.AccessToken), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = WhitelistResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Data)
}
