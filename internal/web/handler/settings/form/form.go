// Package form renders and applies the settings page of a group or event.
//
// Every setting of the owner is one row of the form: value_<id> holds the value and the
// active_<id> checkbox the active flag. Only settings of the owner are read, so a posted id of
// another owner is ignored.
package form

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/web/handler"
)

const (
	valuePrefix  = "value_"
	activePrefix = "active_"
)

// Row is one setting with the choices of a select setting.
type Row struct {
	models.Setting
	Options []string
}

// ValueField is the form field holding the value.
func (r Row) ValueField() string {
	return valuePrefix + strconv.FormatUint(r.ID, 10)
}

// ActiveField is the form field holding the active checkbox.
func (r Row) ActiveField() string {
	return activePrefix + strconv.FormatUint(r.ID, 10)
}

// IsBoolean reports whether only the active flag is editable.
func (r Row) IsBoolean() bool {
	return r.Type == models.SettingTypeBoolean
}

// IsSelect reports whether the value is picked from Options.
func (r Row) IsSelect() bool {
	return r.Type == models.SettingTypeSelect
}

// Rows lists the settings of the owner. options maps setting names to their choices.
func Rows(
	ctx context.Context,
	db *gorm.DB,
	owner models.SettingOwner,
	ownerID uint64,
	options map[string][]string,
) ([]Row, error) {
	settings, err := setting.List(db.WithContext(ctx), owner, ownerID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(settings))
	for i, s := range settings {
		rows[i] = Row{Setting: s, Options: options[s.Name]}
	}

	return rows, nil
}

// Apply stores the posted values of every setting of the owner in one transaction. It returns
// the messages of invalid values; nothing is stored when there are any.
func Apply(
	c *fiber.Ctx,
	db *gorm.DB,
	owner models.SettingOwner,
	ownerID uint64,
	options map[string][]string,
) ([]string, error) {
	rows, err := Rows(c.UserContext(), db, owner, ownerID, options)
	if err != nil {
		return nil, err
	}

	type change struct {
		id     uint64
		value  string
		active bool
	}

	var (
		changes []change
		invalid []string
	)

	for _, r := range rows {
		value := r.Value
		if !r.IsBoolean() {
			value = strings.TrimSpace(c.FormValue(r.ValueField()))
		}

		active := handler.Checked(c.FormValue(r.ActiveField()))

		if r.IsSelect() && value != "" && !slices.Contains(r.Options, value) {
			invalid = append(invalid, fmt.Sprintf("%s: unknown choice %q", r.Label, value))
			continue
		}

		if value != r.Value || active != r.IsActive {
			changes = append(changes, change{id: r.ID, value: value, active: active})
		}
	}

	if len(invalid) > 0 {
		return invalid, nil
	}

	return nil, db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		for _, ch := range changes {
			if _, errUpdate := setting.Update(tx, owner, ownerID, ch.id, ch.value, ch.active); errUpdate != nil {
				return errUpdate
			}
		}

		return nil
	})
}
