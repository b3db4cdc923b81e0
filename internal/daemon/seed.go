package daemon

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/db/models"
)

const (
	devUsername = "admin"
	devPassword = "changeme"
)

// seed creates a local admin account in dev mode when there are no users yet.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	_, err := auth.NewLocalProvider(db).
		CreateUser(context.Background(), devUsername, devUsername+"@localhost", devPassword, "Admin")
	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return nil
	}

	if err != nil {
		return err
	}

	log.Warn().Str("username", devUsername).Msg("dev mode: created local user with default password")

	return nil
}
