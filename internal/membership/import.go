package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/metrics"
)

// ErrUnknownUser is reported for an import row whose user does not exist.
var ErrUnknownUser = errors.New("unknown user")

// ImportRow is one line of a bulk import. The user is found by UserID, or by Email when
// UserID is zero. An empty Role means the Member role.
type ImportRow struct {
	Line   int
	UserID uint64
	Email  string
	Role   string
}

// RowError explains why a row was not imported.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ImportResult summarises one import batch.
type ImportResult struct {
	Batch   string
	Created int
	Updated int
	Skipped int
	Errors  []RowError
}

// Import creates a membership for every row. Users who already are active members are skipped,
// or get the row's role when override is set. Rows that fail are reported, the others are kept.
func (r *Resolver) Import(
	ctx context.Context,
	group *models.Group,
	rows []ImportRow,
	override bool,
) (*ImportResult, error) {
	result := &ImportResult{Batch: uuid.NewString()}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			outcome, err := importRow(tx, group, row, override, result.Batch)
			if err != nil {
				if isRowError(err) {
					result.Errors = append(result.Errors, RowError{Line: row.Line, Err: err})
					continue
				}

				return err
			}

			switch outcome {
			case outcomeCreated:
				result.Created++
			case outcomeUpdated:
				result.Updated++
			default:
				result.Skipped++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Memberships.WithLabelValues(string(models.MembershipSourceImport)).Add(float64(result.Created))

	return result, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

func importRow(tx *gorm.DB, group *models.Group, row ImportRow, override bool, batch string) (outcome, error) {
	userID, err := importUser(tx, row)
	if err != nil {
		return outcomeSkipped, err
	}

	name := strings.TrimSpace(row.Role)
	if name == "" {
		name = catalog.RoleMember
	}

	role, err := roleByName(tx, models.ScopeGroup, group.ID, name)
	if err != nil {
		return outcomeSkipped, err
	}

	var existing models.Membership

	err = tx.Where(whereActiveMembership, group.ID, userID, true).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m := models.NewActiveMembership(group.ID, userID, role.ID, models.MembershipSourceImport)
		m.ImportBatch = batch

		return outcomeCreated, create(tx, m)
	case err != nil:
		return outcomeSkipped, err
	case !override || existing.RoleID == role.ID:
		return outcomeSkipped, nil
	}

	return outcomeUpdated, tx.Model(&existing).Updates(map[string]any{
		"role_id":      role.ID,
		"import_batch": batch,
	}).Error
}

func importUser(tx *gorm.DB, row ImportRow) (uint64, error) {
	var user models.User

	q := tx.Select("id")
	if row.UserID != 0 {
		q = q.Where("id = ?", row.UserID)
	} else {
		q = q.Where("email = ?", strings.TrimSpace(row.Email)).Order("id ASC")
	}

	err := q.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUnknownUser
	}

	return user.ID, err
}

func isRowError(err error) bool {
	return errors.Is(err, ErrUnknownUser) || errors.Is(err, ErrRoleNotFound)
}
