package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, s := range settings {
		err := db.Create(&s).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	seedSettings(t, db, []models.Setting{
		{OwnerType: models.SettingOwnerGroup, OwnerID: 1, Name: "role", Value: "Member", IsActive: true},
		{OwnerType: models.SettingOwnerGroup, OwnerID: 2, Name: "role", Value: "Volunteer", IsActive: true},
		{OwnerType: models.SettingOwnerEvent, OwnerID: 1, Name: "role", Value: "Authorizer", IsActive: true},
	})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		owner         models.SettingOwner
		ownerID       uint64
		settingName   string
		expectedError error
		expectedValue string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			owner:         models.SettingOwnerGroup,
			ownerID:       1,
			settingName:   "role",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			owner:         models.SettingOwnerGroup,
			ownerID:       1,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "invalid owner type",
			dbParam:       db,
			owner:         "team",
			ownerID:       1,
			settingName:   "role",
			expectedError: ErrInvalidOwner,
		},
		{
			name:          "zero owner id",
			dbParam:       db,
			owner:         models.SettingOwnerGroup,
			ownerID:       0,
			settingName:   "role",
			expectedError: ErrInvalidOwner,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			owner:         models.SettingOwnerGroup,
			ownerID:       1,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:          "group 1",
			dbParam:       db,
			owner:         models.SettingOwnerGroup,
			ownerID:       1,
			settingName:   "role",
			expectedValue: "Member",
		},
		{
			name:          "group 2",
			dbParam:       db,
			owner:         models.SettingOwnerGroup,
			ownerID:       2,
			settingName:   "role",
			expectedValue: "Volunteer",
		},
		{
			name:          "event with same id as group",
			dbParam:       db,
			owner:         models.SettingOwnerEvent,
			ownerID:       1,
			settingName:   "role",
			expectedValue: "Authorizer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Get(tc.dbParam, tc.owner, tc.ownerID, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, s.Name)
			assert.Equal(t, tc.expectedValue, s.Value)
		})
	}
}

func TestGetByIDChecksOwner(t *testing.T) {
	db := setupTestDB(t)

	s, err := Create(db, models.SettingOwnerGroup, 1, "whitelist", catalog.SettingDefinition{IsActive: true})
	require.NoError(t, err)

	got, err := GetByID(db, models.SettingOwnerGroup, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "whitelist", got.Name)

	_, err = GetByID(db, models.SettingOwnerGroup, 2, s.ID)
	require.ErrorIs(t, err, ErrSettingNotFound)

	_, err = GetByID(db, models.SettingOwnerEvent, 1, s.ID)
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	s, err := Create(db, models.SettingOwnerEvent, 3, "max_check_ins", catalog.SettingDefinition{
		Label:    "Maximum Number of Checkins",
		Value:    "1",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, models.SettingTypeString, s.Type)

	_, err = Create(db, models.SettingOwnerEvent, 3, "max_check_ins", catalog.SettingDefinition{})
	require.ErrorIs(t, err, ErrSettingAlreadyExists)

	// same name under another owner is fine
	_, err = Create(db, models.SettingOwnerEvent, 4, "max_check_ins", catalog.SettingDefinition{})
	require.NoError(t, err)
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, models.SettingOwnerGroup, 7, catalog.GroupSettings()))

	settings, err := List(db, models.SettingOwnerGroup, 7)
	require.NoError(t, err)
	assert.Len(t, settings, len(catalog.GroupSettings()))

	chooseRole, err := Get(db, models.SettingOwnerGroup, 7, catalog.SettingChooseRole)
	require.NoError(t, err)
	assert.False(t, chooseRole.IsActive)

	// seeding again keeps changed values
	_, err = Update(db, models.SettingOwnerGroup, 7, chooseRole.ID, "", true)
	require.NoError(t, err)

	require.NoError(t, Seed(db, models.SettingOwnerGroup, 7, catalog.GroupSettings()))

	chooseRole, err = Get(db, models.SettingOwnerGroup, 7, catalog.SettingChooseRole)
	require.NoError(t, err)
	assert.True(t, chooseRole.IsActive)

	settings, err = List(db, models.SettingOwnerGroup, 7)
	require.NoError(t, err)
	assert.Len(t, settings, len(catalog.GroupSettings()))
}

func TestSeedErrors(t *testing.T) {
	require.ErrorIs(t, Seed(nil, models.SettingOwnerGroup, 1, catalog.GroupSettings()), ErrDBNil)
	require.ErrorIs(t, Seed(setupTestDB(t), models.SettingOwnerGroup, 0, catalog.GroupSettings()), ErrInvalidOwner)
	require.NoError(t, Seed(setupTestDB(t), models.SettingOwnerGroup, 1, nil))
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	s, err := Create(db, models.SettingOwnerEvent, 1, "auto_waitlist", catalog.SettingDefinition{
		Type:     models.SettingTypeBoolean,
		IsActive: true,
	})
	require.NoError(t, err)

	updated, err := Update(db, models.SettingOwnerEvent, 1, s.ID, "", false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	reloaded, err := Get(db, models.SettingOwnerEvent, 1, "auto_waitlist")
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	_, err = Update(db, models.SettingOwnerEvent, 2, s.ID, "", true)
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	s, err := Set(db, models.SettingOwnerUser, 5, catalog.SettingAuthorizeCode, "abc123", true)
	require.NoError(t, err)
	assert.True(t, s.IsActive)

	s, err = Set(db, models.SettingOwnerUser, 5, catalog.SettingAuthorizeCode, "def456", true)
	require.NoError(t, err)
	assert.Equal(t, "def456", s.Value)

	settings, err := List(db, models.SettingOwnerUser, 5)
	require.NoError(t, err)
	assert.Len(t, settings, 1)
}

func TestFindActiveByValue(t *testing.T) {
	db := setupTestDB(t)

	seedSettings(t, db, []models.Setting{
		{OwnerType: models.SettingOwnerUser, OwnerID: 1, Name: "authorize_code", Value: "abc", IsActive: true},
		{OwnerType: models.SettingOwnerUser, OwnerID: 2, Name: "authorize_code", Value: "abc", IsActive: false},
		{OwnerType: models.SettingOwnerUser, OwnerID: 3, Name: "authorize_code", Value: "xyz", IsActive: true},
		{OwnerType: models.SettingOwnerGroup, OwnerID: 1, Name: "authorize_code", Value: "abc", IsActive: true},
	})

	found, err := FindActiveByValue(db, models.SettingOwnerUser, "authorize_code", "abc")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(1), found[0].OwnerID)

	found, err = FindActiveByValue(db, models.SettingOwnerUser, "authorize_code", "nope")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = FindActiveByValue(nil, models.SettingOwnerUser, "authorize_code", "abc")
	require.ErrorIs(t, err, ErrDBNil)
}

func TestDefinitionsWithPrefix(t *testing.T) {
	defs := DefinitionsWithPrefix([]models.Setting{
		{Name: "default_role", Value: "Volunteer", IsActive: true},
		{Name: "default_auto_waitlist", Type: models.SettingTypeBoolean, IsActive: true},
		{Name: "role", Value: "Member"},
		{Name: "default_"},
	}, catalog.DefaultPrefix)

	require.Len(t, defs, 2)
	assert.Equal(t, "Volunteer", defs["role"].Value)
	assert.True(t, defs["auto_waitlist"].IsActive)
}
