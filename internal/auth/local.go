package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("username = ? AND auth_source = ?", username, models.AuthSourceLocal).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// CreateUser creates a new local user and seeds its user settings.
func (p *LocalProvider) CreateUser(ctx context.Context, username, email, password, name string) (*models.User, error) {
	user := models.User{
		Active:     true,
		Username:   strings.TrimSpace(username),
		Email:      strings.TrimSpace(email),
		Password:   models.HashPassword(password),
		Name:       strings.TrimSpace(name),
		AuthSource: models.AuthSourceLocal,
	}

	if err := createUser(ctx, p.db, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	return findUser(ctx, p.db, "id = ?", userID)
}

// GetUserByEmail retrieves the first user registered with email.
func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findUser(ctx, p.db, "email = ?", strings.TrimSpace(email))
}

func findUser(ctx context.Context, db *gorm.DB, query string, arg any) (*models.User, error) {
	var user models.User

	err := db.WithContext(ctx).Where(query, arg).Order("id ASC").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// createUser inserts user after checking username and email are free, and seeds the user
// settings in the same transaction.
func createUser(ctx context.Context, db *gorm.DB, user *models.User) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		if count > 0 {
			return ErrUserNameOrEmailExists
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := setting.Seed(tx, models.SettingOwnerUser, user.ID, catalog.UserSettings()); err != nil {
			return fmt.Errorf("failed to seed user settings: %w", err)
		}

		return nil
	})
}
