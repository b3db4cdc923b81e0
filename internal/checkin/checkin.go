// Package checkin issues authorization codes and records event check-ins.
//
// An authorizer generates a short code from a seed of their choice. Attendees enter that code
// to check in; the code identifies the authorizer, who must hold the authorize permission in
// the event.
package checkin

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/metrics"
)

const (
	// CodeOffset skips the leading characters of the digest.
	CodeOffset = 25
	// MaxCodeLength is the longest code the digest can provide after CodeOffset.
	MaxCodeLength = hexDigestLen - CodeOffset

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	hexDigestLen  = argon2KeyLen * 2
)

// Issuer issues and validates authorization codes and records check-ins.
type Issuer struct {
	db   *gorm.DB
	auth *auth.Service
	salt []byte
}

// NewIssuer creates an issuer. salt is mixed into every code digest.
func NewIssuer(db *gorm.DB, authService *auth.Service, salt string) *Issuer {
	return &Issuer{db: db, auth: authService, salt: []byte(salt)}
}

// Code derives a code of length characters from seed. The same seed, salt and length always
// give the same code.
func Code(seed string, salt []byte, length int) (string, error) {
	if length < 1 || length > MaxCodeLength {
		return "", ErrInvalidCodeLength
	}

	digest := hex.EncodeToString(argon2.IDKey([]byte(seed), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen))

	return digest[CodeOffset : CodeOffset+length], nil
}

// Issue derives a code from seed and stores it as the active authorize_code of the user.
func (i *Issuer) Issue(ctx context.Context, userID uint64, seed string, length int) (string, error) {
	code, err := Code(seed, i.salt, length)
	if err != nil {
		return "", err
	}

	if _, err = setting.Set(i.db.WithContext(ctx), models.SettingOwnerUser, userID,
		catalog.SettingAuthorizeCode, code, true); err != nil {
		return "", err
	}

	metrics.CodesIssued.Inc()

	return code, nil
}

// Current returns the active code of the user, or "" if none was issued.
func (i *Issuer) Current(ctx context.Context, userID uint64) (string, error) {
	s, err := setting.Get(i.db.WithContext(ctx), models.SettingOwnerUser, userID, catalog.SettingAuthorizeCode)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	if !s.IsActive {
		return "", nil
	}

	return s.Value, nil
}

// Validate returns the user whose active authorize_code equals the trimmed code.
func (i *Issuer) Validate(ctx context.Context, code string) (uint64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ErrAuthorizationFailed
	}

	found, err := setting.FindActiveByValue(i.db.WithContext(ctx), models.SettingOwnerUser,
		catalog.SettingAuthorizeCode, code)
	if err != nil {
		return 0, err
	}

	if len(found) != 1 {
		return 0, ErrAuthorizationFailed
	}

	return found[0].OwnerID, nil
}

// CheckIn records that userID attended event, authorized by the owner of code.
func (i *Issuer) CheckIn(ctx context.Context, event *models.Event, userID uint64, code string) (*models.Checkin, error) {
	c, err := i.checkIn(ctx, event, userID, code)

	switch {
	case err == nil:
		metrics.Checkins.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrAuthorizationFailed):
		metrics.Checkins.WithLabelValues("unauthorized").Inc()
	case errors.Is(err, ErrCheckinLimit):
		metrics.Checkins.WithLabelValues("limit").Inc()
	default:
		metrics.Checkins.WithLabelValues("rejected").Inc()
	}

	return c, err
}

func (i *Issuer) checkIn(ctx context.Context, event *models.Event, userID uint64, code string) (*models.Checkin, error) {
	authorizerID, err := i.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	allowed, err := i.auth.Can(ctx, models.ScopeEvent, event.ID, authorizerID, auth.PermAuthorize)
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, ErrAuthorizationFailed
	}

	c := &models.Checkin{EventID: event.ID, UserID: userID, AuthorizerID: authorizerID}

	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var signup models.Signup

		errSignup := tx.Where("event_id = ? AND user_id = ? AND is_active = ?", event.ID, userID, true).
			First(&signup).Error
		if errors.Is(errSignup, gorm.ErrRecordNotFound) {
			return ErrNotSignedUp
		}

		if errSignup != nil {
			return errSignup
		}

		if signup.IsWaitlisted {
			return ErrWaitlisted
		}

		limit, errLimit := checkinLimit(tx, event.ID)
		if errLimit != nil {
			return errLimit
		}

		if limit > 0 {
			count, errCount := countCheckins(tx, event.ID, userID)
			if errCount != nil {
				return errCount
			}

			if count >= limit {
				return ErrCheckinLimit
			}
		}

		return tx.Create(c).Error
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Count returns how often the user checked in at the event.
func (i *Issuer) Count(ctx context.Context, eventID, userID uint64) (int64, error) {
	return countCheckins(i.db.WithContext(ctx), eventID, userID)
}

// Counts returns the number of check-ins per user for an event.
func (i *Issuer) Counts(ctx context.Context, eventID uint64) (map[uint64]int64, error) {
	var rows []struct {
		UserID uint64
		Total  int64
	}

	err := i.db.WithContext(ctx).Model(&models.Checkin{}).
		Select("user_id, COUNT(*) AS total").
		Where("event_id = ?", eventID).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Total
	}

	return counts, nil
}

func countCheckins(db *gorm.DB, eventID, userID uint64) (int64, error) {
	var count int64
	err := db.Model(&models.Checkin{}).Where("event_id = ? AND user_id = ?", eventID, userID).Count(&count).Error

	return count, err
}

// checkinLimit returns 0 when the event has no limit: max_check_ins is inactive, missing, not a
// number, or not positive.
func checkinLimit(tx *gorm.DB, eventID uint64) (int64, error) {
	s, err := setting.Get(tx, models.SettingOwnerEvent, eventID, catalog.SettingMaxCheckIns)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	if !s.IsActive {
		return 0, nil
	}

	limit, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
	if err != nil || limit < 0 {
		return 0, nil //nolint:nilerr
	}

	return limit, nil
}
