package models

import "gorm.io/gorm"

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Group{},
		&Event{},
		&Role{},
		&Setting{},
		&Membership{},
		&Signup{},
		&Checkin{},
	)
}
