package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/models"
)

func TestOpenSQLiteAndSeed(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Name: ":memory:"}}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	require.NoError(t, seed(db))
	require.NoError(t, seed(db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, devUsername, users[0].Username)
	assert.True(t, users[0].VerifyPassword(devPassword))

	var settings int64
	require.NoError(t, db.Model(&models.Setting{}).Where("owner_id = ?", users[0].ID).Count(&settings).Error)
	assert.Positive(t, settings)
}
