// Package setting provides CRUD operations for owner scoped settings of groups, events and users.
package setting

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
)

const (
	ownerQueryPattern     = "owner_type = ? AND owner_id = ?"
	ownerNameQueryPattern = "owner_type = ? AND owner_id = ? AND name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to create/update a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidOwner is returned for an unknown owner type or a zero owner id.
	ErrInvalidOwner = errors.New("invalid setting owner")
)

func checkOwner(owner models.SettingOwner, ownerID uint64) error {
	switch owner {
	case models.SettingOwnerGroup, models.SettingOwnerEvent, models.SettingOwnerUser:
	default:
		return ErrInvalidOwner
	}

	if ownerID == 0 {
		return ErrInvalidOwner
	}

	return nil
}

func check(db *gorm.DB, owner models.SettingOwner, ownerID uint64, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if err := checkOwner(owner, ownerID); err != nil {
		return err
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSettingNotFound
	}

	return err
}

// Get retrieves a setting of an owner by its name.
func Get(db *gorm.DB, owner models.SettingOwner, ownerID uint64, name string) (*models.Setting, error) {
	if err := check(db, owner, ownerID, name); err != nil {
		return nil, err
	}

	var s models.Setting
	if err := db.Where(ownerNameQueryPattern, owner, ownerID, name).First(&s).Error; err != nil {
		return nil, notFound(err)
	}

	return &s, nil
}

// GetByID retrieves a setting by id, but only if it belongs to the given owner.
func GetByID(db *gorm.DB, owner models.SettingOwner, ownerID, id uint64) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := checkOwner(owner, ownerID); err != nil {
		return nil, err
	}

	var s models.Setting
	if err := db.Where(ownerQueryPattern, owner, ownerID).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &s, nil
}

// List returns every setting of an owner ordered by name.
func List(db *gorm.DB, owner models.SettingOwner, ownerID uint64) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := checkOwner(owner, ownerID); err != nil {
		return nil, err
	}

	var settings []models.Setting
	if err := db.Where(ownerQueryPattern, owner, ownerID).Order("name ASC").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Create creates a new setting for an owner.
func Create(
	db *gorm.DB,
	owner models.SettingOwner,
	ownerID uint64,
	name string,
	def catalog.SettingDefinition,
) (*models.Setting, error) {
	if err := check(db, owner, ownerID, name); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Setting{}).Where(ownerNameQueryPattern, owner, ownerID, name).
		Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrSettingAlreadyExists
	}

	s := fromDefinition(owner, ownerID, name, def)
	if err := db.Create(s).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// Seed creates every definition the owner does not have yet. Existing settings are left alone,
// so seeding twice never resets a value an owner has changed.
func Seed(db *gorm.DB, owner models.SettingOwner, ownerID uint64, defs map[string]catalog.SettingDefinition) error {
	if db == nil {
		return ErrDBNil
	}

	if err := checkOwner(owner, ownerID); err != nil {
		return err
	}

	if len(defs) == 0 {
		return nil
	}

	rows := make([]*models.Setting, 0, len(defs))
	for _, name := range catalog.SortedNames(defs) {
		rows = append(rows, fromDefinition(owner, ownerID, name, defs[name]))
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}

// Update changes value and active flag of a setting that belongs to the owner.
func Update(
	db *gorm.DB,
	owner models.SettingOwner,
	ownerID, id uint64,
	value string,
	isActive bool,
) (*models.Setting, error) {
	s, err := GetByID(db, owner, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.Value = value
	s.IsActive = isActive

	if err = db.Model(s).Select("value", "is_active").Updates(s).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// Set stores value and active flag under name, creating the setting if needed.
func Set(
	db *gorm.DB,
	owner models.SettingOwner,
	ownerID uint64,
	name, value string,
	isActive bool,
) (*models.Setting, error) {
	s, err := Get(db, owner, ownerID, name)
	if errors.Is(err, ErrSettingNotFound) {
		return Create(db, owner, ownerID, name, catalog.SettingDefinition{
			Value:    value,
			Type:     models.SettingTypeString,
			IsActive: isActive,
		})
	}

	if err != nil {
		return nil, err
	}

	s.Value = value
	s.IsActive = isActive

	if err = db.Model(s).Select("value", "is_active").Updates(s).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// FindActiveByValue returns the active settings named name whose value equals value,
// across all owners of the given type.
func FindActiveByValue(db *gorm.DB, owner models.SettingOwner, name, value string) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var settings []models.Setting

	err := db.Where("owner_type = ? AND name = ? AND value = ? AND is_active = ?", owner, name, value, true).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// DefinitionsWithPrefix turns the settings whose name starts with prefix into definitions keyed
// by the name without the prefix. It is used to seed an event from its group's default_* settings.
func DefinitionsWithPrefix(settings []models.Setting, prefix string) map[string]catalog.SettingDefinition {
	defs := make(map[string]catalog.SettingDefinition)

	for _, s := range settings {
		name, ok := strings.CutPrefix(s.Name, prefix)
		if !ok || name == "" {
			continue
		}

		defs[name] = catalog.SettingDefinition{
			Label:       s.Label,
			Description: s.Description,
			Value:       s.Value,
			Type:        s.Type,
			IsActive:    s.IsActive,
		}
	}

	return defs
}

func fromDefinition(
	owner models.SettingOwner,
	ownerID uint64,
	name string,
	def catalog.SettingDefinition,
) *models.Setting {
	t := def.Type
	if t == "" {
		t = models.SettingTypeString
	}

	return &models.Setting{
		OwnerType:   owner,
		OwnerID:     ownerID,
		Name:        name,
		Label:       def.Label,
		Description: def.Description,
		Value:       def.Value,
		Type:        t,
		IsActive:    def.IsActive,
	}
}
